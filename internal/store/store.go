// Package store is the persistence contract the trace engine reads through:
// three row-shaped operations over parameterized SQL.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Result reports the outcome of a write statement.
type Result struct {
	AffectedID  *uuid.UUID // id returned by a RETURNING id clause, when present
	ChangeCount int64
}

// Querier runs parameterized SQL. Placeholders are written as "?".
type Querier interface {
	// GetRow returns the first row, or (nil, nil) when the query matched none.
	GetRow(ctx context.Context, query string, args ...any) (Row, error)
	GetAll(ctx context.Context, query string, args ...any) ([]Row, error)
	RunQuery(ctx context.Context, query string, args ...any) (Result, error)
}
