package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"haccptrace/internal/infra"
)

// ErrUnavailable marks failures caused by the guard itself: an open breaker
// or an expired per-call timeout.
var ErrUnavailable = errors.New("store: unavailable")

type guarded struct {
	next    Querier
	cb      *infra.CircuitBreaker
	timeout time.Duration
}

// NewGuarded wraps next so every call runs under cb with its own timeout.
// A zero timeout leaves the caller's deadline as the only bound.
func NewGuarded(next Querier, cb *infra.CircuitBreaker, timeout time.Duration) Querier {
	return &guarded{next: next, cb: cb, timeout: timeout}
}

// IsFailure is the breaker predicate matching this guard: cancellation and
// the caller's own deadline are not held against the database.
func IsFailure(err error) bool {
	var cd *callerDone
	return !errors.Is(err, context.Canceled) && !errors.As(err, &cd)
}

// callerDone marks a query cut short by the caller's own context, so the
// breaker does not count it. run unwraps it before returning.
type callerDone struct{ err error }

func (e *callerDone) Error() string { return e.err.Error() }
func (e *callerDone) Unwrap() error { return e.err }

func (g *guarded) run(ctx context.Context, fn func(ctx context.Context) error) error {
	parent := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	err := g.cb.Execute(func() error {
		err := fn(ctx)
		if err != nil && parent.Err() != nil {
			return &callerDone{err: err}
		}
		return err
	})

	var cd *callerDone
	switch {
	case errors.As(err, &cd):
		return cd.err
	case errors.Is(err, infra.ErrCircuitOpen):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: query timed out after %s: %w", ErrUnavailable, g.timeout, err)
	}
	return err
}

func (g *guarded) GetRow(ctx context.Context, query string, args ...any) (Row, error) {
	var row Row
	err := g.run(ctx, func(ctx context.Context) (err error) {
		row, err = g.next.GetRow(ctx, query, args...)
		return err
	})
	return row, err
}

func (g *guarded) GetAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	var rows []Row
	err := g.run(ctx, func(ctx context.Context) (err error) {
		rows, err = g.next.GetAll(ctx, query, args...)
		return err
	})
	return rows, err
}

func (g *guarded) RunQuery(ctx context.Context, query string, args ...any) (Result, error) {
	var res Result
	err := g.run(ctx, func(ctx context.Context) (err error) {
		res, err = g.next.RunQuery(ctx, query, args...)
		return err
	})
	return res, err
}
