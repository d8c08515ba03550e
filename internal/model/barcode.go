package model

import (
	"time"

	"github.com/google/uuid"
)

// Barcode is an alias for a lot or package; it is not a graph node.
type Barcode struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code             string     `gorm:"type:varchar(128);uniqueIndex;not null"`
	Symbology        string     `gorm:"type:varchar(32);not null;default:'EAN13'"`
	RefIncomingLotID *uuid.UUID `gorm:"type:uuid"`
	RefOutgoingLotID *uuid.UUID `gorm:"type:uuid"`
	RefPackageID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Barcode) TableName() string { return "barcodes" }
