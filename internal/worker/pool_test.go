package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachableRedis fails every dequeue the way a dropped connection does.
// Only BRPop is implemented; the embedded interface is nil.
type unreachableRedis struct {
	redis.Cmdable
	pops atomic.Int32
}

func (r *unreachableRedis) BRPop(ctx context.Context, _ time.Duration, _ ...string) *redis.StringSliceCmd {
	r.pops.Add(1)
	cmd := redis.NewStringSliceCmd(ctx)
	cmd.SetErr(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"))
	return cmd
}

func TestPool_BacksOffWhenRedisIsUnreachable(t *testing.T) {
	prev := popErrorBackoff
	popErrorBackoff = 50 * time.Millisecond
	t.Cleanup(func() { popErrorBackoff = prev })

	rdb := &unreachableRedis{}
	ctx, cancel := context.WithCancel(context.Background())
	pool := StartWorkerPool(ctx, rdb, PoolConfig{Workers: 1})

	time.Sleep(200 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() { pool.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancel")
	}

	// ~4 attempts in 200ms at 50ms apart; a hot loop would make thousands
	assert.LessOrEqual(t, rdb.pops.Load(), int32(10))
	assert.GreaterOrEqual(t, rdb.pops.Load(), int32(1))
}
