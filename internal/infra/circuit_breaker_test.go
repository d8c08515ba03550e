package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("dial tcp: connection refused")

func fail() error { return errDown }
func ok() error   { return nil }

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
		IsFailure:        func(err error) bool { return !errors.Is(err, context.Canceled) },
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)

	assert.ErrorIs(t, cb.Execute(fail), errDown)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errDown)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)

	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(ok))
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	require.Equal(t, CBOpen, cb.State())

	clock = clock.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)

	clock = clock.Add(time.Minute)
	require.Equal(t, CBHalfOpen, cb.State())
	_ = cb.Execute(fail)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return context.Canceled }), context.Canceled)
	}
	assert.Equal(t, CBClosed, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(9).String())
}
