// Package model holds the gorm table definitions. Reference columns carry
// indexes but no foreign-key constraints: the trace engine reports unresolved
// references instead of relying on the database to reject them.
package model

// All lists every table model in migration order.
func All() []any {
	return []any{
		&Supplier{},
		&Customer{},
		&RawFood{},
		&ProcessedFood{},
		&IncomingLot{},
		&OutgoingLot{},
		&Package{},
		&Sale{},
		&Barcode{},
		&QualityCheck{},
	}
}
