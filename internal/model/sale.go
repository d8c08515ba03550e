package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one invoiced delivery to a customer. Normally exactly one Ref column
// is set; a sale with none is kept and reported as an orphan.
type Sale struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNumber    string           `gorm:"type:varchar(64);uniqueIndex;not null"`
	InvoiceDate      time.Time        `gorm:"type:date;not null"`
	CustomerID       uuid.UUID        `gorm:"type:uuid;index;not null"`
	Quantity         *decimal.Decimal `gorm:"type:numeric(12,3)"`
	RefIncomingLotID *uuid.UUID       `gorm:"type:uuid;index"`
	RefOutgoingLotID *uuid.UUID       `gorm:"type:uuid;index"`
	RefPackageID     *uuid.UUID       `gorm:"type:uuid;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Sale) TableName() string { return "sales" }
