package model

import (
	"time"

	"github.com/google/uuid"
)

// QualityCheck is an inspection recorded against a lot.
type QualityCheck struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RefIncomingLotID *uuid.UUID `gorm:"type:uuid;index"`
	RefOutgoingLotID *uuid.UUID `gorm:"type:uuid;index"`
	CheckDate        time.Time  `gorm:"type:date;not null"`
	Passed           bool       `gorm:"not null"`
	Inspector        string     `gorm:"not null"`
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (QualityCheck) TableName() string { return "quality_checks" }
