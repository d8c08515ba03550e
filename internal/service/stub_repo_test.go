package service

import (
	"context"
	"time"

	"haccptrace/internal/lineage"
	"haccptrace/internal/model"
	"haccptrace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── In-memory LineageRepository ─────────────────────────────────────────────

type stubEdge struct {
	from, to lineage.Key
}

type stubLineageRepo struct {
	nodes     map[lineage.Key]lineage.Node
	order     []lineage.Key
	edges     []stubEdge
	customers map[uuid.UUID]lineage.Party
	suppliers map[uuid.UUID]lineage.Party
	checks    map[lineage.Key][]model.QualityCheck
	barcodes  map[string]lineage.Key
	err       error
}

var _ repository.LineageRepository = (*stubLineageRepo)(nil)

func newStubRepo() *stubLineageRepo {
	return &stubLineageRepo{
		nodes:     map[lineage.Key]lineage.Node{},
		customers: map[uuid.UUID]lineage.Party{},
		suppliers: map[uuid.UUID]lineage.Party{},
		checks:    map[lineage.Key][]model.QualityCheck{},
		barcodes:  map[string]lineage.Key{},
	}
}

func (r *stubLineageRepo) add(n lineage.Node) lineage.Key {
	if _, ok := r.nodes[n.Key]; !ok {
		r.order = append(r.order, n.Key)
	}
	r.nodes[n.Key] = n
	if n.Customer != nil {
		r.customers[n.Customer.ID] = *n.Customer
	}
	if n.Supplier != nil {
		r.suppliers[n.Supplier.ID] = *n.Supplier
	}
	return n.Key
}

func (r *stubLineageRepo) link(from, to lineage.Key) {
	r.edges = append(r.edges, stubEdge{from, to})
	child := r.nodes[to]
	child.Refs = append(child.Refs, from)
	r.nodes[to] = child
}

func (r *stubLineageRepo) Node(_ context.Context, key lineage.Key) (*lineage.Node, error) {
	if r.err != nil {
		return nil, r.err
	}
	n, ok := r.nodes[key]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *stubLineageRepo) Children(_ context.Context, n *lineage.Node) ([]lineage.Link, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []lineage.Link
	for _, e := range r.edges {
		if e.from != n.Key {
			continue
		}
		child := r.nodes[e.to]
		kind, _ := lineage.EdgeKindBetween(e.from.Kind, e.to.Kind)
		out = append(out, lineage.Link{Node: child, Kind: kind, Quantity: child.Quantity})
	}
	return out, nil
}

func (r *stubLineageRepo) Parents(_ context.Context, n *lineage.Node) ([]lineage.Link, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []lineage.Link
	for _, ref := range n.Refs {
		parent, ok := r.nodes[ref]
		if !ok {
			out = append(out, lineage.Link{Node: lineage.Node{Key: ref}, Missing: true})
			continue
		}
		kind, _ := lineage.EdgeKindBetween(ref.Kind, n.Key.Kind)
		out = append(out, lineage.Link{Node: parent, Kind: kind, Quantity: n.Quantity})
	}
	return out, nil
}

func (r *stubLineageRepo) FindCustomer(_ context.Context, id uuid.UUID) (*lineage.Party, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *stubLineageRepo) SalesByCustomer(_ context.Context, customerID uuid.UUID) ([]lineage.Node, error) {
	var out []lineage.Node
	for _, k := range r.order {
		n := r.nodes[k]
		if k.Kind == lineage.KindSale && n.Customer != nil && n.Customer.ID == customerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *stubLineageRepo) QualityChecks(_ context.Context, lot lineage.Key) ([]model.QualityCheck, error) {
	return r.checks[lot], nil
}

func (r *stubLineageRepo) ResolveBarcode(_ context.Context, code string) (*lineage.Key, error) {
	k, ok := r.barcodes[code]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *stubLineageRepo) Identify(_ context.Context, id uuid.UUID) ([]lineage.Kind, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []lineage.Kind
	for _, k := range r.order {
		if k.ID == id {
			out = append(out, k.Kind)
		}
	}
	if _, ok := r.suppliers[id]; ok {
		out = append(out, lineage.KindSupplier)
	}
	if _, ok := r.customers[id]; ok {
		out = append(out, lineage.KindCustomer)
	}
	return out, nil
}

// ── Fixture ─────────────────────────────────────────────────────────────────

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func date(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

var (
	acme   = lineage.Party{ID: uuid.MustParse("00000000-0000-0000-0000-00000000a001"), Name: "Acme", TaxID: "30-11111111-1"}
	deliCo = lineage.Party{ID: uuid.MustParse("00000000-0000-0000-0000-00000000c001"), Name: "Deli Co"}
)

func newKey(kind lineage.Kind, n int) lineage.Key {
	return lineage.NewKey(kind, uuid.MustParse("00000000-0000-0000-0000-"+pad(n)))
}

func pad(n int) string {
	const digits = "000000000000"
	s := []byte(digits)
	for i := len(s) - 1; n > 0; i-- {
		s[i] = byte('0' + n%10)
		n /= 10
	}
	return string(s)
}

// scenario: Acme → L1 (50) → L2 → PKG1 → INV-001 → Deli Co.
type scenario struct {
	repo               *stubLineageRepo
	l1, l2, pkg1, inv1 lineage.Key
}

func newScenario() scenario {
	r := newStubRepo()
	sc := scenario{repo: r}
	supplier, customer := acme, deliCo
	sc.l1 = r.add(lineage.Node{
		Key: newKey(lineage.KindIncomingLot, 1), Label: "L1",
		Quantity: dec("50"), Remaining: dec("50"),
		Date: date("2024-03-01"), Expiry: date("2024-03-20"),
		Food:     &lineage.Food{ID: uuid.MustParse("00000000-0000-0000-0000-0000000f0001"), Name: "Raw milk"},
		Supplier: &supplier,
	})
	sc.l2 = r.add(lineage.Node{
		Key: newKey(lineage.KindOutgoingLot, 2), Label: "L2",
		Quantity: dec("30"), Date: date("2024-03-02"), Expiry: date("2024-04-02"),
		Food: &lineage.Food{ID: uuid.MustParse("00000000-0000-0000-0000-0000000f0002"), Name: "Cheese"},
	})
	sc.pkg1 = r.add(lineage.Node{Key: newKey(lineage.KindPackage, 3), Label: "PKG1", Unit: "kg"})
	sc.inv1 = r.add(lineage.Node{
		Key: newKey(lineage.KindSale, 4), Label: "INV-001",
		Date: date("2024-03-10"), Customer: &customer,
	})
	r.link(sc.l1, sc.l2)
	r.link(sc.l2, sc.pkg1)
	r.link(sc.pkg1, sc.inv1)
	return sc
}
