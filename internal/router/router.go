package router

import (
	"haccptrace/internal/config"
	"haccptrace/internal/handler"
	"haccptrace/internal/infra"
	"haccptrace/internal/middleware"
	"haccptrace/internal/repository"
	"haccptrace/internal/service"
	"haccptrace/internal/store"
	"haccptrace/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived resources built by the composition root.
type Deps struct {
	DB   *gorm.DB
	RDB  redis.Cmdable
	DBCB *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Querier ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Persistence ──────────────────────────────────────────────────────────
	querier := store.NewGuarded(store.NewGormQuerier(deps.DB), deps.DBCB, cfg.QueryTimeout)
	lineageRepo := repository.NewLineageRepository(querier)

	// ── Services ─────────────────────────────────────────────────────────────
	traceSvc := service.NewTraceService(lineageRepo, service.TraceOptions{
		MaxHops: cfg.TraceMaxHops,
		FanOut:  cfg.TraceFanOut,
	})
	recallSvc := service.NewRecallService(traceSvc, worker.NewDispatcher(deps.RDB), cfg.RecallNotifyEmail)

	// ── Handlers ─────────────────────────────────────────────────────────────
	traceH := handler.NewTraceHandler(traceSvc)
	recallH := handler.NewRecallHandler(recallSvc, deps.RDB)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(deps.DB, deps.RDB, deps.DBCB))

	v1 := r.Group("/v1")
	{
		trace := v1.Group("/trace")
		{
			trace.GET("/lots/:kind/:id", traceH.TraceLot)
			trace.GET("/chain/:id", traceH.TraceChain)
			trace.GET("/customers/:id", traceH.TraceCustomer)
			trace.GET("/barcodes/:code", traceH.TraceBarcode)
		}

		v1.POST("/recalls", recallH.Notify)
		v1.GET("/recalls/dead-letters", recallH.DeadLetters)
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
