package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is one result row keyed by column name. Values are whatever the driver
// produced, so readers below accept the usual representations.
type Row map[string]any

// Reader decodes typed columns from a Row and keeps the first error, so a
// block of reads can be checked once with Err.
type Reader struct {
	row Row
	err error
}

// Read starts decoding r.
func Read(r Row) *Reader { return &Reader{row: r} }

// Err returns the first decoding error.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(col string, v any, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("store: column %q: cannot read %T as %s", col, v, want)
	}
}

// value returns the column value, nil for SQL NULL or a missing column.
func (r *Reader) value(col string) any {
	v, ok := r.row[col]
	if !ok {
		return nil
	}
	return v
}

// String reads a text column. NULL reads as "".
func (r *Reader) String(col string) string {
	switch v := r.value(col).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		r.fail(col, v, "string")
		return ""
	}
}

// OptUUID reads a nullable uuid column.
func (r *Reader) OptUUID(col string) *uuid.UUID {
	var (
		id  uuid.UUID
		err error
	)
	switch v := r.value(col).(type) {
	case nil:
		return nil
	case uuid.UUID:
		id = v
	case [16]byte:
		id = uuid.UUID(v)
	case string:
		id, err = uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			id, err = uuid.FromBytes(v)
		} else {
			id, err = uuid.ParseBytes(v)
		}
	default:
		r.fail(col, v, "uuid")
		return nil
	}
	if err != nil {
		r.fail(col, r.value(col), "uuid")
		return nil
	}
	return &id
}

// UUID reads a non-null uuid column.
func (r *Reader) UUID(col string) uuid.UUID {
	id := r.OptUUID(col)
	if id == nil {
		r.fail(col, nil, "uuid")
		return uuid.Nil
	}
	return *id
}

// OptDecimal reads a nullable numeric column.
func (r *Reader) OptDecimal(col string) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := r.value(col).(type) {
	case nil:
		return nil
	case decimal.Decimal:
		d = v
	case string:
		d, err = decimal.NewFromString(v)
	case []byte:
		d, err = decimal.NewFromString(string(v))
	case int64:
		d = decimal.NewFromInt(v)
	case int32:
		d = decimal.NewFromInt32(v)
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		r.fail(col, v, "decimal")
		return nil
	}
	if err != nil {
		r.fail(col, r.value(col), "decimal")
		return nil
	}
	return &d
}

// OptTime reads a nullable date or timestamp column.
func (r *Reader) OptTime(col string) *time.Time {
	switch v := r.value(col).(type) {
	case nil:
		return nil
	case time.Time:
		return &v
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07", time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
		r.fail(col, v, "time")
		return nil
	default:
		r.fail(col, v, "time")
		return nil
	}
}

// Bool reads a boolean column. NULL reads as false.
func (r *Reader) Bool(col string) bool {
	switch v := r.value(col).(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(col, v, "bool")
		}
		return b
	default:
		r.fail(col, v, "bool")
		return false
	}
}
