package model

import (
	"time"

	"github.com/google/uuid"
)

// RawFood is a raw-material catalog entry.
type RawFood struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string     `gorm:"not null"`
	Category   *string    `gorm:"type:varchar(64)"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (RawFood) TableName() string { return "raw_foods" }

// ProcessedFood is a finished-product catalog entry.
type ProcessedFood struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Category  *string   `gorm:"type:varchar(64)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProcessedFood) TableName() string { return "processed_foods" }
