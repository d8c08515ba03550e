package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier ships raw material into the plant.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	TaxID     *string   `gorm:"type:varchar(32)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Supplier) TableName() string { return "suppliers" }

// Customer receives sold product.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	TaxID     *string   `gorm:"type:varchar(32)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Customer) TableName() string { return "customers" }
