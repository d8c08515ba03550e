package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"haccptrace/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Querier stub ────────────────────────────────────────────────────────────

type stubQuerier struct {
	err   error
	block bool
	calls int
}

var _ Querier = (*stubQuerier)(nil)

func (s *stubQuerier) wait(ctx context.Context) error {
	s.calls++
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *stubQuerier) GetRow(ctx context.Context, _ string, _ ...any) (Row, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return Row{"id": "x"}, nil
}

func (s *stubQuerier) GetAll(ctx context.Context, _ string, _ ...any) ([]Row, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return []Row{{"id": "x"}}, nil
}

func (s *stubQuerier) RunQuery(ctx context.Context, _ string, _ ...any) (Result, error) {
	if err := s.wait(ctx); err != nil {
		return Result{}, err
	}
	return Result{ChangeCount: 1}, nil
}

func newBreaker() *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
		IsFailure:        IsFailure,
	})
}

func TestGuarded_PassesThrough(t *testing.T) {
	q := NewGuarded(&stubQuerier{}, newBreaker(), time.Second)

	row, err := q.GetRow(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "x", row["id"])

	rows, err := q.GetAll(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	res, err := q.RunQuery(context.Background(), "UPDATE x SET y = 1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ChangeCount)
}

func TestGuarded_OpensAfterFailures(t *testing.T) {
	down := errors.New("connection refused")
	stub := &stubQuerier{err: down}
	cb := newBreaker()
	q := NewGuarded(stub, cb, time.Second)

	for i := 0; i < 2; i++ {
		_, err := q.GetAll(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, down)
	}
	require.Equal(t, infra.CBOpen, cb.State())

	_, err := q.GetRow(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, 2, stub.calls)
}

func TestGuarded_Timeout(t *testing.T) {
	q := NewGuarded(&stubQuerier{block: true}, newBreaker(), 10*time.Millisecond)

	_, err := q.GetRow(context.Background(), "SELECT pg_sleep(10)")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuarded_CancellationDoesNotTrip(t *testing.T) {
	cb := newBreaker()
	q := NewGuarded(&stubQuerier{block: true}, cb, 0)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := q.GetAll(ctx, "SELECT 1")
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestGuarded_CallerDeadlinePassesThrough(t *testing.T) {
	for _, timeout := range []time.Duration{0, time.Hour} {
		cb := newBreaker()
		q := NewGuarded(&stubQuerier{block: true}, cb, timeout)

		for i := 0; i < 3; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			_, err := q.GetRow(ctx, "SELECT 1")
			cancel()
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.NotErrorIs(t, err, ErrUnavailable)
			assert.NotContains(t, err.Error(), "timed out after")
		}
		assert.Equal(t, infra.CBClosed, cb.State(), "guard timeout %s", timeout)
	}
}
