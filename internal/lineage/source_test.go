package lineage_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"haccptrace/internal/lineage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── In-memory Source stub ───────────────────────────────────────────────────

type memEdge struct {
	from, to lineage.Key
	kind     lineage.EdgeKind
}

type memSource struct {
	mu       sync.Mutex
	nodes    map[lineage.Key]lineage.Node
	edges    []memEdge
	failOn   map[lineage.Key]error
	lookups  int
	inFlight int
	maxSeen  int
	delay    time.Duration
}

func newMemSource() *memSource {
	return &memSource{
		nodes:  make(map[lineage.Key]lineage.Node),
		failOn: make(map[lineage.Key]error),
	}
}

var _ lineage.Source = (*memSource)(nil)

func (s *memSource) add(n lineage.Node) lineage.Key {
	s.nodes[n.Key] = n
	return n.Key
}

// link stores an edge and records the upstream key as a ref on the child.
func (s *memSource) link(from, to lineage.Key, kind lineage.EdgeKind) {
	s.edges = append(s.edges, memEdge{from: from, to: to, kind: kind})
	child := s.nodes[to]
	child.Refs = append(child.Refs, from)
	s.nodes[to] = child
}

func (s *memSource) enter() {
	s.mu.Lock()
	s.lookups++
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func (s *memSource) leave() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *memSource) Node(ctx context.Context, key lineage.Key) (*lineage.Node, error) {
	s.enter()
	defer s.leave()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := s.nodes[key]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *memSource) Children(ctx context.Context, n *lineage.Node) ([]lineage.Link, error) {
	s.enter()
	defer s.leave()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.failOn[n.Key]; err != nil {
		return nil, err
	}
	var out []lineage.Link
	for _, e := range s.edges {
		if e.from != n.Key {
			continue
		}
		child := s.nodes[e.to]
		out = append(out, lineage.Link{Node: child, Kind: e.kind, Quantity: child.Quantity})
	}
	return out, nil
}

func (s *memSource) Parents(ctx context.Context, n *lineage.Node) ([]lineage.Link, error) {
	s.enter()
	defer s.leave()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.failOn[n.Key]; err != nil {
		return nil, err
	}
	var out []lineage.Link
	for _, ref := range n.Refs {
		parent, ok := s.nodes[ref]
		if !ok {
			out = append(out, lineage.Link{Node: lineage.Node{Key: ref}, Missing: true})
			continue
		}
		kind, _ := lineage.EdgeKindBetween(ref.Kind, n.Key.Kind)
		for _, e := range s.edges {
			if e.from == ref && e.to == n.Key {
				kind = e.kind
				break
			}
		}
		out = append(out, lineage.Link{Node: parent, Kind: kind, Quantity: n.Quantity})
	}
	return out, nil
}

// ── Fixture helpers ─────────────────────────────────────────────────────────

var errBoom = errors.New("connection reset by peer")

func qty(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func key(kind lineage.Kind) lineage.Key { return lineage.NewKey(kind, uuid.New()) }

func incoming(label, quantity string) lineage.Node {
	return lineage.Node{
		Key:       key(lineage.KindIncomingLot),
		Label:     label,
		Quantity:  qty(quantity),
		Remaining: qty(quantity),
		Date:      day("2024-03-01"),
		Supplier:  &lineage.Party{ID: uuid.New(), Name: "Acme"},
	}
}

func outgoing(label, quantity string) lineage.Node {
	return lineage.Node{Key: key(lineage.KindOutgoingLot), Label: label, Quantity: qty(quantity), Date: day("2024-03-02")}
}

func pkg(label string) lineage.Node {
	return lineage.Node{Key: key(lineage.KindPackage), Label: label, Unit: "kg"}
}

func sale(label, invoiced string) lineage.Node {
	return lineage.Node{
		Key:      key(lineage.KindSale),
		Label:    label,
		Date:     day(invoiced),
		Customer: &lineage.Party{ID: uuid.New(), Name: "Deli Co"},
	}
}

// scenario is Acme → L1 (50) → L2 → PKG1 → INV-001 → Deli Co.
type scenario struct {
	src                *memSource
	l1, l2, pkg1, inv1 lineage.Key
}

func newScenario() scenario {
	src := newMemSource()
	sc := scenario{src: src}
	sc.l1 = src.add(incoming("L1", "50"))
	sc.l2 = src.add(outgoing("L2", "30"))
	sc.pkg1 = src.add(pkg("PKG1"))
	sc.inv1 = src.add(sale("INV-001", "2024-03-10"))
	src.link(sc.l1, sc.l2, lineage.EdgeComposition)
	src.link(sc.l2, sc.pkg1, lineage.EdgePackaging)
	src.link(sc.pkg1, sc.inv1, lineage.EdgeSale)
	return sc
}
