package lineage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validate checks a loaded graph for data-quality problems. Findings follow
// node insertion order, then dangling references, then the hop-limit note.
func Validate(g *Graph) []Finding {
	var out []Finding
	for _, n := range g.Nodes() {
		switch n.Key.Kind {
		case KindIncomingLot:
			out = append(out, checkRemaining(n)...)
			out = append(out, checkOverdraw(g, n)...)
		case KindSale:
			out = append(out, checkOrphan(n)...)
			out = append(out, checkExpiry(g, n)...)
		}
	}
	for _, d := range g.Dangling() {
		out = append(out, Finding{
			Code:    DanglingReference,
			Subject: d.From,
			Message: fmt.Sprintf("%s references %s, which does not exist", d.From, d.Ref),
		})
	}
	if g.Truncated() {
		out = append(out, Finding{
			Code:    HopLimitReached,
			Message: "hop limit reached before the graph was fully expanded",
		})
	}
	return out
}

func checkOrphan(n *Node) []Finding {
	if len(n.Refs) > 0 {
		return nil
	}
	return []Finding{{
		Code:    OrphanSale,
		Subject: n.Key,
		Message: fmt.Sprintf("sale %s references no lot or package", n.Label),
	}}
}

func checkRemaining(n *Node) []Finding {
	if n.Remaining == nil || n.Quantity == nil {
		return nil
	}
	if n.Remaining.IsNegative() || n.Remaining.GreaterThan(*n.Quantity) {
		return []Finding{{
			Code:    RemainingOutOfRange,
			Subject: n.Key,
			Message: fmt.Sprintf("lot %s has %s remaining of %s",
				n.Label, n.Remaining.String(), n.Quantity.String()),
		}}
	}
	return nil
}

// checkOverdraw only judges lots whose children were all loaded; a partial
// view could under-count but never over-count, so unexpanded lots are skipped.
func checkOverdraw(g *Graph, n *Node) []Finding {
	if n.Quantity == nil || !g.Expanded(n.Key, Forward) {
		return nil
	}
	allocated := decimal.Zero
	for _, e := range g.Out(n.Key) {
		if e.Quantity != nil {
			allocated = allocated.Add(*e.Quantity)
		}
	}
	if !allocated.GreaterThan(*n.Quantity) {
		return nil
	}
	return []Finding{{
		Code:    QuantityOverdraw,
		Subject: n.Key,
		Message: fmt.Sprintf("lot %s allocated %s out of %s",
			n.Label, allocated.String(), n.Quantity.String()),
	}}
}

// checkExpiry compares the invoice date with the expiry of the nearest lots
// upstream of the sale. Packages are looked through; lots without an expiry
// date stop the search on that branch.
func checkExpiry(g *Graph, sale *Node) []Finding {
	if sale.Date == nil {
		return nil
	}
	var out []Finding
	seen := map[Key]bool{sale.Key: true}
	queue := []Key{sale.Key}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.In(cur) {
			if seen[e.From] {
				continue
			}
			seen[e.From] = true
			up, _ := g.Node(e.From)
			if !up.Key.Kind.IsLot() {
				queue = append(queue, up.Key)
				continue
			}
			if up.Expiry != nil && day(*sale.Date).After(day(*up.Expiry)) {
				out = append(out, Finding{
					Code:    ExpiredAtSale,
					Subject: sale.Key,
					Message: fmt.Sprintf("sale %s invoiced %s, lot %s expired %s",
						sale.Label, sale.Date.Format(time.DateOnly),
						up.Label, up.Expiry.Format(time.DateOnly)),
				})
			}
		}
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
