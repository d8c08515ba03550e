package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomingLot is a batch of raw material received from a supplier.
// 0 <= QuantityRemaining <= Quantity is expected but not enforced here.
type IncomingLot struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LotNumber         string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Quantity          decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	QuantityRemaining decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	SupplierID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	FoodID            uuid.UUID       `gorm:"type:uuid;not null"` // raw_foods
	ReceivedDate      time.Time       `gorm:"type:date;not null"`
	ExpiryDate        *time.Time      `gorm:"type:date"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (IncomingLot) TableName() string { return "incoming_lots" }

// OutgoingLot is a batch of processed product made from at most one incoming lot.
type OutgoingLot struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LotNumber           string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Quantity            decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	FoodID              uuid.UUID       `gorm:"type:uuid;not null"` // processed_foods
	SourceIncomingLotID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedDate         time.Time       `gorm:"type:date;not null"`
	ExpiryDate          *time.Time      `gorm:"type:date"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (OutgoingLot) TableName() string { return "outgoing_lots" }
