package handler

import (
	"net/http"
	"strconv"

	"haccptrace/internal/apierror"
	"haccptrace/internal/dto"
	"haccptrace/internal/service"
	"haccptrace/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RecallHandler struct {
	svc service.RecallService
	rdb redis.Cmdable
}

func NewRecallHandler(svc service.RecallService, rdb redis.Cmdable) *RecallHandler {
	return &RecallHandler{svc: svc, rdb: rdb}
}

// Notify godoc
// @Summary Trace a lot and queue a recall alert for every affected customer
// @Tags recall
// @Accept json
// @Produce json
// @Param body body dto.RecallRequest true "Recalled lot"
// @Success 202 {object} dto.RecallResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Failure 503 {object} apierror.APIError
// @Router /v1/recalls [post]
func (h *RecallHandler) Notify(c *gin.Context) {
	var req dto.RecallRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NotifyRecall(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// DeadLetters godoc
// @Summary Recall alerts that exhausted their delivery attempts
// @Tags recall
// @Produce json
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} worker.DLQEntry
// @Failure 503 {object} apierror.APIError
// @Router /v1/recalls/dead-letters [get]
func (h *RecallHandler) DeadLetters(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, apierror.WithCode("invalid_argument", "limit must be between 1 and 500"))
		return
	}
	entries, err := worker.DLQEntries(c.Request.Context(), h.rdb, worker.QueueRecall, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.WithCode("upstream_unavailable", "job queue unavailable"))
		return
	}
	c.JSON(http.StatusOK, entries)
}
