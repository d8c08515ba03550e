package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRecall = "jobs:recall"

	JobRecallAlert = "recall_alert"
)

// popErrorBackoff is the pause after a failed dequeue, so an unreachable
// Redis does not spin the workers.
var popErrorBackoff = 2 * time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt string          `json:"enqueued_at"` // RFC 3339
}

// Handler processes the payload of one job type. A returned error is retried
// unless it is marked Permanent.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb redis.Cmdable
}

func NewDispatcher(rdb redis.Cmdable) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecallAlert pushes a recall notification job to Redis.
func (d *Dispatcher) EnqueueRecallAlert(ctx context.Context, payload RecallAlertPayload) error {
	return d.enqueue(ctx, QueueRecall, JobRecallAlert, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data, EnqueuedAt: time.Now().UTC().Format(time.RFC3339)}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("dispatcher: enqueue %s: %w", jobType, err)
	}
	return nil
}

// PoolConfig wires the worker pool.
type PoolConfig struct {
	Workers     int
	MaxAttempts int
	Handlers    map[string]Handler
}

// Pool consumes job queues and routes each job to its Handler.
type Pool struct {
	rdb         redis.Cmdable
	handlers    map[string]Handler
	maxAttempts int
	wg          sync.WaitGroup
}

// StartWorkerPool launches cfg.Workers goroutines consuming the recall queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb redis.Cmdable, cfg PoolConfig) *Pool {
	p := &Pool{rdb: rdb, handlers: cfg.Handlers, maxAttempts: max(cfg.MaxAttempts, 1)}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", cfg.Workers)
	return p
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	queues := []string{QueueRecall}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue // timeout or shutdown
				}
				log.Warn().Err(err).Int("worker", id).Msg("worker: dequeue failed")
				select {
				case <-ctx.Done():
				case <-time.After(popErrorBackoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(fmt.Sprintf("%q", raw)), err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler registered", 0)
		return
	}

	attempts := 0
	err := withRetry(ctx, p.maxAttempts, func(attempt int) error {
		attempts = attempt + 1
		return h.Process(ctx, job.Payload)
	})
	if err != nil {
		log.Error().Err(err).Str("type", job.Type).Int("attempts", attempts).Msg("job failed")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), attempts)
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Int("attempts", attempts).Msg("job processed")
}
