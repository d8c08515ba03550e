package store

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

var returningID = regexp.MustCompile(`(?is)\breturning\s+id\b`)

type gormQuerier struct {
	db *gorm.DB
}

// NewGormQuerier runs queries as raw SQL through a gorm connection.
func NewGormQuerier(db *gorm.DB) Querier {
	return &gormQuerier{db: db}
}

func (q *gormQuerier) GetRow(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := q.GetAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (q *gormQuerier) GetAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	var maps []map[string]any
	if err := q.db.WithContext(ctx).Raw(query, args...).Scan(&maps).Error; err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

func (q *gormQuerier) RunQuery(ctx context.Context, query string, args ...any) (Result, error) {
	if returningID.MatchString(query) {
		var maps []map[string]any
		tx := q.db.WithContext(ctx).Raw(query, args...).Scan(&maps)
		if tx.Error != nil {
			return Result{}, fmt.Errorf("store: exec: %w", tx.Error)
		}
		res := Result{ChangeCount: int64(len(maps))}
		if len(maps) > 0 {
			rd := Read(Row(maps[0]))
			res.AffectedID = rd.OptUUID("id")
			if err := rd.Err(); err != nil {
				return Result{}, err
			}
		}
		return res, nil
	}

	tx := q.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		return Result{}, fmt.Errorf("store: exec: %w", tx.Error)
	}
	return Result{ChangeCount: tx.RowsAffected}, nil
}
