package service

import (
	"time"

	"haccptrace/internal/dto"
	"haccptrace/internal/lineage"
	"haccptrace/internal/model"
)

// Mapping from the engine's types to the JSON report shapes.

func labelOf(n *lineage.Node) dto.Label {
	switch n.Key.Kind {
	case lineage.KindSale:
		return dto.Label{InvoiceNumber: n.Label}
	case lineage.KindPackage:
		return dto.Label{Description: n.Label}
	default:
		return dto.Label{LotNumber: n.Label}
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func nodeView(n *lineage.Node) dto.NodeView {
	return dto.NodeView{
		Kind:              string(n.Key.Kind),
		ID:                n.Key.ID.String(),
		Label:             labelOf(n),
		Quantity:          n.Quantity,
		QuantityRemaining: n.Remaining,
		MeasureUnit:       n.Unit,
		Date:              formatDate(n.Date),
		ExpiryDate:        formatDate(n.Expiry),
		Food:              n.Food,
		Supplier:          n.Supplier,
		Customer:          n.Customer,
	}
}

// closureSteps maps every step after the seed.
func closureSteps(g *lineage.Graph, res *lineage.Result) []dto.TraceStep {
	out := make([]dto.TraceStep, 0, len(res.Steps))
	for _, s := range res.Steps {
		if s.Level == 0 {
			continue
		}
		n, _ := g.Node(s.Key)
		step := dto.TraceStep{NodeView: nodeView(n), Level: s.Level, Path: s.Path}
		if s.Via != nil {
			step.Via = string(s.Via.Kind)
		}
		out = append(out, step)
	}
	return out
}

func chainNodes(g *lineage.Graph, res *lineage.Result) []dto.ChainNode {
	out := make([]dto.ChainNode, 0, len(res.Steps))
	for _, s := range res.Steps {
		n, _ := g.Node(s.Key)
		out = append(out, dto.ChainNode{
			Level: s.Level,
			Kind:  string(n.Key.Kind),
			Label: labelOf(n),
			Path:  s.Path,
			ID:    n.Key.ID.String(),
		})
	}
	return out
}

func findingViews(fs []lineage.Finding) []dto.FindingView {
	out := make([]dto.FindingView, 0, len(fs))
	for _, f := range fs {
		v := dto.FindingView{Code: string(f.Code), Message: f.Message}
		if f.Subject != (lineage.Key{}) {
			subject := f.Subject
			v.Subject = &subject
		}
		out = append(out, v)
	}
	return out
}

func qualityCheckViews(checks []model.QualityCheck) []dto.QualityCheckView {
	out := make([]dto.QualityCheckView, 0, len(checks))
	for _, qc := range checks {
		out = append(out, dto.QualityCheckView{
			ID:        qc.ID.String(),
			CheckDate: qc.CheckDate.Format(time.DateOnly),
			Passed:    qc.Passed,
			Inspector: qc.Inspector,
			Notes:     qc.Notes,
		})
	}
	return out
}

// parties collects distinct parties in first-seen order.
type parties struct {
	seen map[string]bool
	list []lineage.Party
}

func newParties() *parties { return &parties{seen: map[string]bool{}, list: []lineage.Party{}} }

func (p *parties) add(party *lineage.Party) {
	if party == nil || p.seen[party.ID.String()] {
		return
	}
	p.seen[party.ID.String()] = true
	p.list = append(p.list, *party)
}
