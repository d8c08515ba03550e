// Package seed loads the reference genealogy used by demos and integration
// tests:
//
//	Acme → L1 (50 kg raw milk) → L2 (cheese) → PKG1 → INV-001 → Deli Co
//
// Every row has a fixed id derived from its natural key, so running the seed
// twice leaves the database unchanged.
package seed

import (
	"context"
	"fmt"
	"time"

	"haccptrace/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var namespace = uuid.MustParse("5b0e3a8e-6f1c-4c47-9a0b-2f7f4e1d8c11")

// ID returns the fixed id of a seeded row.
func ID(table, naturalKey string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(table+"/"+naturalKey))
}

// Fixture holds the ids of the seeded rows.
type Fixture struct {
	Acme, DeliCo        uuid.UUID
	RawMilk, Cheese     uuid.UUID
	L1, L2, PKG1, INV01 uuid.UUID
	Barcode             string
	QualityCheck        uuid.UUID
}

// Scenario inserts the reference genealogy in a single transaction.
func Scenario(ctx context.Context, db *gorm.DB) (*Fixture, error) {
	f := &Fixture{
		Acme:         ID("suppliers", "Acme"),
		DeliCo:       ID("customers", "Deli Co"),
		RawMilk:      ID("raw_foods", "Raw milk"),
		Cheese:       ID("processed_foods", "Cheese"),
		L1:           ID("incoming_lots", "L1"),
		L2:           ID("outgoing_lots", "L2"),
		PKG1:         ID("packages", "PKG1"),
		INV01:        ID("sales", "INV-001"),
		Barcode:      "4006381333931",
		QualityCheck: ID("quality_checks", "L2/2024-03-02"),
	}
	acmeTax := "30-11111111-1"
	category := "dairy"
	notes := "pH 6.6, coliforms within limits"

	rows := []any{
		&model.Supplier{ID: f.Acme, Name: "Acme", TaxID: &acmeTax},
		&model.Customer{ID: f.DeliCo, Name: "Deli Co"},
		&model.RawFood{ID: f.RawMilk, Name: "Raw milk", Category: &category, SupplierID: &f.Acme},
		&model.ProcessedFood{ID: f.Cheese, Name: "Cheese", Category: &category},
		&model.IncomingLot{
			ID: f.L1, LotNumber: "L1",
			Quantity: decimal.NewFromInt(50), QuantityRemaining: decimal.NewFromInt(20),
			SupplierID: f.Acme, FoodID: f.RawMilk,
			ReceivedDate: day("2024-03-01"), ExpiryDate: dayPtr("2024-03-20"),
		},
		&model.OutgoingLot{
			ID: f.L2, LotNumber: "L2",
			Quantity: decimal.NewFromInt(30), FoodID: f.Cheese, SourceIncomingLotID: &f.L1,
			CreatedDate: day("2024-03-02"), ExpiryDate: dayPtr("2024-04-02"),
		},
		&model.Package{
			ID: f.PKG1, Description: "PKG1", MeasureUnit: "kg",
			Quantity: decPtr(30), SourceOutgoingLotID: &f.L2,
		},
		&model.Sale{
			ID: f.INV01, InvoiceNumber: "INV-001", InvoiceDate: day("2024-03-10"),
			CustomerID: f.DeliCo, Quantity: decPtr(30), RefPackageID: &f.PKG1,
		},
		&model.Barcode{ID: ID("barcodes", f.Barcode), Code: f.Barcode, Symbology: "EAN13", RefOutgoingLotID: &f.L2},
		&model.QualityCheck{
			ID: f.QualityCheck, RefOutgoingLotID: &f.L2,
			CheckDate: day("2024-03-02"), Passed: true, Inspector: "R. Diaz", Notes: &notes,
		},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
				return fmt.Errorf("seed: insert %T: %w", row, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("rows", len(rows)).Msg("seed: reference scenario loaded")
	return f, nil
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func decPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}
