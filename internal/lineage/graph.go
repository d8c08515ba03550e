package lineage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Party is a supplier or customer attached to a node.
type Party struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	TaxID string    `json:"taxId,omitempty"`
}

// Food is the catalog entry a lot is made of.
type Food struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
}

// Node is a lot, package or sale. Optional attributes are nil when the row did
// not carry them.
type Node struct {
	Key   Key
	Label string // lot number, invoice number or package description

	Quantity  *decimal.Decimal
	Remaining *decimal.Decimal // incoming lots only
	Unit      string           // packages only

	Date   *time.Time // received, created or invoiced
	Expiry *time.Time

	Food     *Food
	Supplier *Party // incoming lots
	Customer *Party // sales

	// Refs are the upstream foreign keys stored on the row, in column order.
	// An empty Refs on a sale makes it an orphan.
	Refs []Key
}

// merge fills attributes missing on n from o. Present attributes on n win.
func (n *Node) merge(o Node) {
	if n.Label == "" {
		n.Label = o.Label
	}
	if n.Quantity == nil {
		n.Quantity = o.Quantity
	}
	if n.Remaining == nil {
		n.Remaining = o.Remaining
	}
	if n.Unit == "" {
		n.Unit = o.Unit
	}
	if n.Date == nil {
		n.Date = o.Date
	}
	if n.Expiry == nil {
		n.Expiry = o.Expiry
	}
	if n.Food == nil {
		n.Food = o.Food
	}
	if n.Supplier == nil {
		n.Supplier = o.Supplier
	}
	if n.Customer == nil {
		n.Customer = o.Customer
	}
	for _, r := range o.Refs {
		if !containsKey(n.Refs, r) {
			n.Refs = append(n.Refs, r)
		}
	}
}

// Edge is a directed, typed link from upstream to downstream.
type Edge struct {
	From     Key
	To       Key
	Kind     EdgeKind
	Quantity *decimal.Decimal // amount allocated from From into To, when known
}

type edgeID struct {
	from, to Key
	kind     EdgeKind
}

// DanglingRef is a stored foreign key whose target row does not exist.
type DanglingRef struct {
	From Key
	Ref  Key
}

// Graph is a typed, directed multigraph keyed by (kind, id). Two edges of
// different kinds may join the same pair of nodes; the same (from, to, kind)
// triple is stored once.
//
// A Graph is not safe for concurrent mutation.
type Graph struct {
	nodes    map[Key]*Node
	order    []Key
	out      map[Key][]Edge
	in       map[Key][]Edge
	edges    map[edgeID]struct{}
	expanded map[Key]Direction
	dangling []DanglingRef
	trunc    bool
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[Key]*Node),
		out:      make(map[Key][]Edge),
		in:       make(map[Key][]Edge),
		edges:    make(map[edgeID]struct{}),
		expanded: make(map[Key]Direction),
	}
}

// AddNode inserts n or merges it into the node already stored under n.Key, and
// returns the stored node.
func (g *Graph) AddNode(n Node) *Node {
	if cur, ok := g.nodes[n.Key]; ok {
		cur.merge(n)
		return cur
	}
	stored := n
	stored.Refs = append([]Key(nil), n.Refs...)
	g.nodes[n.Key] = &stored
	g.order = append(g.order, n.Key)
	return &stored
}

// AddEdge links two nodes that were added first. Re-adding an existing
// (from, to, kind) edge is a no-op.
func (g *Graph) AddEdge(from, to Key, kind EdgeKind, qty *decimal.Decimal) error {
	if !g.Has(from) {
		return fmt.Errorf("lineage: edge %s -> %s: unknown source node", from, to)
	}
	if !g.Has(to) {
		return fmt.Errorf("lineage: edge %s -> %s: unknown target node", from, to)
	}
	id := edgeID{from: from, to: to, kind: kind}
	if _, dup := g.edges[id]; dup {
		return nil
	}
	g.edges[id] = struct{}{}
	e := Edge{From: from, To: to, Kind: kind, Quantity: qty}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
	return nil
}

// Has reports whether a node is stored under key.
func (g *Graph) Has(key Key) bool {
	_, ok := g.nodes[key]
	return ok
}

// Node returns the node stored under key.
func (g *Graph) Node(key Key) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.nodes[k])
	}
	return out
}

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount is the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Out returns the edges leaving key, in insertion order.
func (g *Graph) Out(key Key) []Edge { return g.out[key] }

// In returns the edges entering key, in insertion order.
func (g *Graph) In(key Key) []Edge { return g.in[key] }

// neighbors returns the edges followed when walking dir from key.
func (g *Graph) neighbors(key Key, dir Direction) []Edge {
	if dir == Backward {
		return g.in[key]
	}
	return g.out[key]
}

// MarkExpanded records that all of key's neighbours in dir were loaded.
func (g *Graph) MarkExpanded(key Key, dir Direction) { g.expanded[key] |= dir }

// Expanded reports whether key's neighbours in dir were loaded.
func (g *Graph) Expanded(key Key, dir Direction) bool { return g.expanded[key]&dir == dir }

// AddDangling records an unresolved foreign key.
func (g *Graph) AddDangling(from, ref Key) {
	for _, d := range g.dangling {
		if d.From == from && d.Ref == ref {
			return
		}
	}
	g.dangling = append(g.dangling, DanglingRef{From: from, Ref: ref})
}

// Dangling returns the unresolved foreign keys met while loading.
func (g *Graph) Dangling() []DanglingRef { return g.dangling }

// markTruncated records that a hop bound stopped expansion.
func (g *Graph) markTruncated() { g.trunc = true }

// Truncated reports whether the loader stopped at its hop bound with
// unexpanded nodes left.
func (g *Graph) Truncated() bool { return g.trunc }

func containsKey(keys []Key, k Key) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
