package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Package is packaging applied to one lot. At most one source column is set.
type Package struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description         string           `gorm:"not null"`
	MeasureUnit         string           `gorm:"type:varchar(16);not null"`
	Quantity            *decimal.Decimal `gorm:"type:numeric(12,3)"`
	SourceIncomingLotID *uuid.UUID       `gorm:"type:uuid;index"`
	SourceOutgoingLotID *uuid.UUID       `gorm:"type:uuid;index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Package) TableName() string { return "packages" }
