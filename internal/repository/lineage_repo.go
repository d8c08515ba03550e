package repository

import (
	"context"
	"fmt"
	"time"

	"haccptrace/internal/lineage"
	"haccptrace/internal/model"
	"haccptrace/internal/store"

	"github.com/google/uuid"
)

// LineageRepository answers the per-hop lookups of the trace engine plus the
// direct queries the trace service runs around it. Every list is ordered by
// (created_at, id) so repeated calls over unchanged data return the same rows
// in the same order.
type LineageRepository interface {
	lineage.Source

	FindCustomer(ctx context.Context, id uuid.UUID) (*lineage.Party, error)
	SalesByCustomer(ctx context.Context, customerID uuid.UUID) ([]lineage.Node, error)
	QualityChecks(ctx context.Context, lot lineage.Key) ([]model.QualityCheck, error)
	// ResolveBarcode returns the node a code aliases, or nil when the code is
	// unknown or references nothing.
	ResolveBarcode(ctx context.Context, code string) (*lineage.Key, error)
	// Identify lists the kinds of every table holding a row with this id.
	Identify(ctx context.Context, id uuid.UUID) ([]lineage.Kind, error)
}

type lineageRepo struct{ q store.Querier }

func NewLineageRepository(q store.Querier) LineageRepository { return &lineageRepo{q: q} }

// ── Node tables ─────────────────────────────────────────────────────────────

type nodeTable struct {
	alias  string
	sel    string
	decode func(*store.Reader) lineage.Node
}

// childQuery is one "rows of table whose fk points at the parent" lookup.
type childQuery struct {
	table lineage.Kind
	fk    string
	edge  lineage.EdgeKind
}

var tables = map[lineage.Kind]nodeTable{
	lineage.KindIncomingLot: {
		alias: "l",
		sel: `SELECT l.id, l.lot_number, l.quantity, l.quantity_remaining, l.received_date, l.expiry_date,
		       l.supplier_id, sp.name AS supplier_name, sp.tax_id AS supplier_tax_id,
		       l.food_id, f.name AS food_name, f.category AS food_category
		  FROM incoming_lots l
		  LEFT JOIN suppliers sp ON sp.id = l.supplier_id
		  LEFT JOIN raw_foods f ON f.id = l.food_id`,
		decode: decodeIncoming,
	},
	lineage.KindOutgoingLot: {
		alias: "o",
		sel: `SELECT o.id, o.lot_number, o.quantity, o.created_date, o.expiry_date, o.source_incoming_lot_id,
		       o.food_id, f.name AS food_name, f.category AS food_category
		  FROM outgoing_lots o
		  LEFT JOIN processed_foods f ON f.id = o.food_id`,
		decode: decodeOutgoing,
	},
	lineage.KindPackage: {
		alias: "p",
		sel: `SELECT p.id, p.description, p.measure_unit, p.quantity,
		       p.source_incoming_lot_id, p.source_outgoing_lot_id
		  FROM packages p`,
		decode: decodePackage,
	},
	lineage.KindSale: {
		alias: "s",
		sel: `SELECT s.id, s.invoice_number, s.invoice_date, s.quantity,
		       s.customer_id, c.name AS customer_name, c.tax_id AS customer_tax_id,
		       s.ref_incoming_lot_id, s.ref_outgoing_lot_id, s.ref_package_id
		  FROM sales s
		  LEFT JOIN customers c ON c.id = s.customer_id`,
		decode: decodeSale,
	},
}

var children = map[lineage.Kind][]childQuery{
	lineage.KindIncomingLot: {
		{lineage.KindOutgoingLot, "source_incoming_lot_id", lineage.EdgeComposition},
		{lineage.KindPackage, "source_incoming_lot_id", lineage.EdgePackaging},
		{lineage.KindSale, "ref_incoming_lot_id", lineage.EdgeSale},
	},
	lineage.KindOutgoingLot: {
		{lineage.KindPackage, "source_outgoing_lot_id", lineage.EdgePackaging},
		{lineage.KindSale, "ref_outgoing_lot_id", lineage.EdgeSale},
	},
	lineage.KindPackage: {
		{lineage.KindSale, "ref_package_id", lineage.EdgeSale},
	},
}

func (r *lineageRepo) Node(ctx context.Context, key lineage.Key) (*lineage.Node, error) {
	t, ok := tables[key.Kind]
	if !ok {
		return nil, fmt.Errorf("repository: %s is not a node kind", key.Kind)
	}
	row, err := r.q.GetRow(ctx, t.sel+" WHERE "+t.alias+".id = ?", key.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	n, err := decode(t, row)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *lineageRepo) Children(ctx context.Context, n *lineage.Node) ([]lineage.Link, error) {
	var out []lineage.Link
	for _, cq := range children[n.Key.Kind] {
		t := tables[cq.table]
		rows, err := r.q.GetAll(ctx,
			t.sel+" WHERE "+t.alias+"."+cq.fk+" = ? ORDER BY "+t.alias+".created_at, "+t.alias+".id",
			n.Key.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			child, err := decode(t, row)
			if err != nil {
				return nil, err
			}
			out = append(out, lineage.Link{Node: child, Kind: cq.edge, Quantity: child.Quantity})
		}
	}
	return out, nil
}

// Parents resolves n.Refs in column order. The allocated amount on the edge
// is the child's own quantity.
func (r *lineageRepo) Parents(ctx context.Context, n *lineage.Node) ([]lineage.Link, error) {
	out := make([]lineage.Link, 0, len(n.Refs))
	for _, ref := range n.Refs {
		parent, err := r.Node(ctx, ref)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			out = append(out, lineage.Link{Node: lineage.Node{Key: ref}, Missing: true})
			continue
		}
		kind, ok := lineage.EdgeKindBetween(ref.Kind, n.Key.Kind)
		if !ok {
			return nil, fmt.Errorf("repository: no edge kind joins %s to %s", ref.Kind, n.Key.Kind)
		}
		out = append(out, lineage.Link{Node: *parent, Kind: kind, Quantity: n.Quantity})
	}
	return out, nil
}

// ── Direct queries ──────────────────────────────────────────────────────────

func (r *lineageRepo) FindCustomer(ctx context.Context, id uuid.UUID) (*lineage.Party, error) {
	row, err := r.q.GetRow(ctx, `SELECT id, name, tax_id FROM customers WHERE id = ?`, id)
	if err != nil || row == nil {
		return nil, err
	}
	rd := store.Read(row)
	p := &lineage.Party{ID: rd.UUID("id"), Name: rd.String("name"), TaxID: rd.String("tax_id")}
	return p, rd.Err()
}

func (r *lineageRepo) SalesByCustomer(ctx context.Context, customerID uuid.UUID) ([]lineage.Node, error) {
	t := tables[lineage.KindSale]
	rows, err := r.q.GetAll(ctx,
		t.sel+` WHERE s.customer_id = ? ORDER BY s.invoice_date, s.created_at, s.id`, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]lineage.Node, 0, len(rows))
	for _, row := range rows {
		n, err := decode(t, row)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *lineageRepo) QualityChecks(ctx context.Context, lot lineage.Key) ([]model.QualityCheck, error) {
	var col string
	switch lot.Kind {
	case lineage.KindIncomingLot:
		col = "ref_incoming_lot_id"
	case lineage.KindOutgoingLot:
		col = "ref_outgoing_lot_id"
	default:
		return nil, nil
	}
	rows, err := r.q.GetAll(ctx,
		`SELECT id, ref_incoming_lot_id, ref_outgoing_lot_id, check_date, passed, inspector, notes, created_at
		   FROM quality_checks WHERE `+col+` = ? ORDER BY check_date, created_at, id`, lot.ID)
	if err != nil {
		return nil, err
	}
	out := make([]model.QualityCheck, 0, len(rows))
	for _, row := range rows {
		rd := store.Read(row)
		qc := model.QualityCheck{
			ID:               rd.UUID("id"),
			RefIncomingLotID: rd.OptUUID("ref_incoming_lot_id"),
			RefOutgoingLotID: rd.OptUUID("ref_outgoing_lot_id"),
			Passed:           rd.Bool("passed"),
			Inspector:        rd.String("inspector"),
		}
		if d := rd.OptTime("check_date"); d != nil {
			qc.CheckDate = *d
		}
		if c := rd.OptTime("created_at"); c != nil {
			qc.CreatedAt = *c
		}
		if notes := rd.String("notes"); notes != "" {
			qc.Notes = &notes
		}
		if err := rd.Err(); err != nil {
			return nil, err
		}
		out = append(out, qc)
	}
	return out, nil
}

func (r *lineageRepo) ResolveBarcode(ctx context.Context, code string) (*lineage.Key, error) {
	row, err := r.q.GetRow(ctx,
		`SELECT ref_incoming_lot_id, ref_outgoing_lot_id, ref_package_id FROM barcodes WHERE code = ?`, code)
	if err != nil || row == nil {
		return nil, err
	}
	rd := store.Read(row)
	refs := refKeys(rd,
		ref{"ref_incoming_lot_id", lineage.KindIncomingLot},
		ref{"ref_outgoing_lot_id", lineage.KindOutgoingLot},
		ref{"ref_package_id", lineage.KindPackage},
	)
	if err := rd.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return &refs[0], nil
}

func (r *lineageRepo) Identify(ctx context.Context, id uuid.UUID) ([]lineage.Kind, error) {
	rows, err := r.q.GetAll(ctx, `
		SELECT 'IncomingLot' AS kind FROM incoming_lots WHERE id = ?
		UNION ALL SELECT 'OutgoingLot' FROM outgoing_lots WHERE id = ?
		UNION ALL SELECT 'Package' FROM packages WHERE id = ?
		UNION ALL SELECT 'Sale' FROM sales WHERE id = ?
		UNION ALL SELECT 'Supplier' FROM suppliers WHERE id = ?
		UNION ALL SELECT 'Customer' FROM customers WHERE id = ?`,
		id, id, id, id, id, id)
	if err != nil {
		return nil, err
	}
	out := make([]lineage.Kind, 0, len(rows))
	for _, row := range rows {
		rd := store.Read(row)
		out = append(out, lineage.Kind(rd.String("kind")))
		if err := rd.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ── Row decoding ────────────────────────────────────────────────────────────

func decode(t nodeTable, row store.Row) (lineage.Node, error) {
	rd := store.Read(row)
	n := t.decode(rd)
	if err := rd.Err(); err != nil {
		return lineage.Node{}, err
	}
	return n, nil
}

type ref struct {
	col  string
	kind lineage.Kind
}

// refKeys returns the populated reference columns in the order given.
func refKeys(rd *store.Reader, refs ...ref) []lineage.Key {
	var out []lineage.Key
	for _, rf := range refs {
		if id := rd.OptUUID(rf.col); id != nil {
			out = append(out, lineage.NewKey(rf.kind, *id))
		}
	}
	return out
}

func food(rd *store.Reader) *lineage.Food {
	id := rd.OptUUID("food_id")
	name := rd.String("food_name")
	if id == nil || name == "" {
		return nil
	}
	return &lineage.Food{ID: *id, Name: name, Category: rd.String("food_category")}
}

func party(rd *store.Reader, idCol, prefix string) *lineage.Party {
	id := rd.OptUUID(idCol)
	name := rd.String(prefix + "_name")
	if id == nil || name == "" {
		return nil
	}
	return &lineage.Party{ID: *id, Name: name, TaxID: rd.String(prefix + "_tax_id")}
}

// dateOnly keeps the calendar day of a DATE column as read by the driver.
func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	out := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &out
}

func decodeIncoming(rd *store.Reader) lineage.Node {
	return lineage.Node{
		Key:       lineage.NewKey(lineage.KindIncomingLot, rd.UUID("id")),
		Label:     rd.String("lot_number"),
		Quantity:  rd.OptDecimal("quantity"),
		Remaining: rd.OptDecimal("quantity_remaining"),
		Date:      dateOnly(rd.OptTime("received_date")),
		Expiry:    dateOnly(rd.OptTime("expiry_date")),
		Food:      food(rd),
		Supplier:  party(rd, "supplier_id", "supplier"),
	}
}

func decodeOutgoing(rd *store.Reader) lineage.Node {
	return lineage.Node{
		Key:      lineage.NewKey(lineage.KindOutgoingLot, rd.UUID("id")),
		Label:    rd.String("lot_number"),
		Quantity: rd.OptDecimal("quantity"),
		Date:     dateOnly(rd.OptTime("created_date")),
		Expiry:   dateOnly(rd.OptTime("expiry_date")),
		Food:     food(rd),
		Refs:     refKeys(rd, ref{"source_incoming_lot_id", lineage.KindIncomingLot}),
	}
}

func decodePackage(rd *store.Reader) lineage.Node {
	return lineage.Node{
		Key:      lineage.NewKey(lineage.KindPackage, rd.UUID("id")),
		Label:    rd.String("description"),
		Quantity: rd.OptDecimal("quantity"),
		Unit:     rd.String("measure_unit"),
		Refs: refKeys(rd,
			ref{"source_incoming_lot_id", lineage.KindIncomingLot},
			ref{"source_outgoing_lot_id", lineage.KindOutgoingLot},
		),
	}
}

func decodeSale(rd *store.Reader) lineage.Node {
	return lineage.Node{
		Key:      lineage.NewKey(lineage.KindSale, rd.UUID("id")),
		Label:    rd.String("invoice_number"),
		Quantity: rd.OptDecimal("quantity"),
		Date:     dateOnly(rd.OptTime("invoice_date")),
		Customer: party(rd, "customer_id", "customer"),
		Refs: refKeys(rd,
			ref{"ref_incoming_lot_id", lineage.KindIncomingLot},
			ref{"ref_outgoing_lot_id", lineage.KindOutgoingLot},
			ref{"ref_package_id", lineage.KindPackage},
		),
	}
}
