package infra

import (
	"fmt"

	"haccptrace/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx. With autoMigrate set it
// creates or updates every table and then applies the SQL patches GORM cannot
// express.
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if autoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// RunMigrations runs AutoMigrate for every model followed by the schema
// patches. Integration tests call it directly.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches adds the composite ordering indexes the loader's per-hop
// queries scan. Every statement is idempotent.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE INDEX IF NOT EXISTS idx_outgoing_lots_source_order
		    ON outgoing_lots (source_incoming_lot_id, created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_packages_in_source_order
		    ON packages (source_incoming_lot_id, created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_packages_out_source_order
		    ON packages (source_outgoing_lot_id, created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_customer_order
		    ON sales (customer_id, invoice_date, created_at, id)`,
		// a code resolves to at most one node
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_barcodes_single_ref') THEN
		    ALTER TABLE barcodes ADD CONSTRAINT chk_barcodes_single_ref CHECK (
		      num_nonnulls(ref_incoming_lot_id, ref_outgoing_lot_id, ref_package_id) <= 1);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
