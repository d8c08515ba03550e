package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"haccptrace/internal/dto"
	"haccptrace/internal/lineage"
	"haccptrace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TraceService answers provenance queries. Every call loads a fresh graph;
// nothing is cached between calls and nothing is written.
type TraceService interface {
	TraceLot(ctx context.Context, lotID uuid.UUID, kind lineage.Kind) (*dto.TraceReport, error)
	TraceCustomer(ctx context.Context, customerID uuid.UUID) (*dto.CustomerTraceReport, error)
	TraceChain(ctx context.Context, id uuid.UUID) (*dto.ChainReport, error)
	TraceBarcode(ctx context.Context, code string) (*dto.ChainReport, error)
}

// TraceOptions tunes the graph loader.
type TraceOptions struct {
	MaxHops int // 0 = unbounded
	FanOut  int
}

type traceService struct {
	repo   repository.LineageRepository
	loader *lineage.Loader
}

func NewTraceService(repo repository.LineageRepository, opts TraceOptions) TraceService {
	return &traceService{
		repo:   repo,
		loader: lineage.NewLoader(repo, lineage.WithMaxHops(opts.MaxHops), lineage.WithFanOut(opts.FanOut)),
	}
}

// chainSeedKinds are the kinds a chain may start from, in lookup order.
var chainSeedKinds = []lineage.Kind{lineage.KindIncomingLot, lineage.KindOutgoingLot, lineage.KindPackage}

func (s *traceService) TraceLot(ctx context.Context, lotID uuid.UUID, kind lineage.Kind) (*dto.TraceReport, error) {
	if !kind.IsLot() {
		return nil, fmt.Errorf("%w: %s is not a lot type", lineage.ErrInvalidArgument, kind)
	}
	seed := lineage.NewKey(kind, lotID)

	g, err := s.loader.Load(ctx, seed, lineage.Both)
	if errors.Is(err, lineage.ErrNotFound) {
		return nil, s.missing(ctx, lotID, kind)
	}
	if err != nil {
		return nil, err
	}

	fwd, err := lineage.Walk(g, seed, lineage.Forward)
	if err != nil {
		return nil, err
	}
	bwd, err := lineage.Walk(g, seed, lineage.Backward)
	if err != nil {
		return nil, err
	}
	checks, err := s.repo.QualityChecks(ctx, seed)
	if err != nil {
		return nil, upstream(err)
	}

	root, _ := g.Node(seed)
	suppliers, customers := newParties(), newParties()
	suppliers.add(root.Supplier)
	for _, st := range bwd.Steps {
		n, _ := g.Node(st.Key)
		suppliers.add(n.Supplier)
	}
	for _, st := range fwd.Steps {
		n, _ := g.Node(st.Key)
		customers.add(n.Customer)
	}

	findings := lineage.MergeFindings(fwd.Findings, bwd.Findings, lineage.Validate(g))
	logFindings("trace_lot", seed, findings)

	return &dto.TraceReport{
		Lot:           nodeView(root),
		QualityChecks: qualityCheckViews(checks),
		Forward:       closureSteps(g, fwd),
		Backward:      closureSteps(g, bwd),
		Suppliers:     suppliers.list,
		Customers:     customers.list,
		Warnings:      findingViews(findings),
	}, nil
}

func (s *traceService) TraceCustomer(ctx context.Context, customerID uuid.UUID) (*dto.CustomerTraceReport, error) {
	customer, err := s.repo.FindCustomer(ctx, customerID)
	if err != nil {
		return nil, upstream(err)
	}
	if customer == nil {
		return nil, s.missing(ctx, customerID, lineage.KindCustomer)
	}

	sales, err := s.repo.SalesByCustomer(ctx, customerID)
	if err != nil {
		return nil, upstream(err)
	}

	report := &dto.CustomerTraceReport{
		Customer: *customer,
		Sales:    make([]dto.SaleTrace, 0, len(sales)),
		Summary:  dto.CustomerSummary{TotalSales: len(sales), UpstreamLots: []dto.LotRef{}},
	}
	allSuppliers := newParties()
	seenLots := make(map[lineage.Key]bool)
	var findings [][]lineage.Finding

	for i := range sales {
		sale := &sales[i]
		g, err := s.loader.Load(ctx, sale.Key, lineage.Backward)
		if err != nil {
			// the sale was listed a moment ago; a miss now is a concurrent write
			return nil, err
		}
		bwd, err := lineage.Walk(g, sale.Key, lineage.Backward)
		if err != nil {
			return nil, err
		}
		findings = append(findings, bwd.Findings, lineage.Validate(g))

		saleSuppliers := newParties()
		for _, st := range bwd.Steps {
			n, _ := g.Node(st.Key)
			saleSuppliers.add(n.Supplier)
			allSuppliers.add(n.Supplier)
			if n.Key.Kind.IsLot() && !seenLots[n.Key] {
				seenLots[n.Key] = true
				report.Summary.UpstreamLots = append(report.Summary.UpstreamLots, dto.LotRef{
					Kind:      string(n.Key.Kind),
					ID:        n.Key.ID.String(),
					LotNumber: n.Label,
				})
			}
		}

		stored, _ := g.Node(sale.Key)
		report.Sales = append(report.Sales, dto.SaleTrace{
			Sale:      nodeView(stored),
			Origin:    closureSteps(g, bwd),
			Suppliers: saleSuppliers.list,
		})

		if d := stored.Date; d != nil {
			if report.Summary.FirstPurchase == "" || formatDate(d) < report.Summary.FirstPurchase {
				report.Summary.FirstPurchase = formatDate(d)
			}
			if formatDate(d) > report.Summary.LastPurchase {
				report.Summary.LastPurchase = formatDate(d)
			}
		}
	}

	merged := lineage.MergeFindings(findings...)
	logFindings("trace_customer", lineage.NewKey(lineage.KindCustomer, customerID), merged)

	report.Summary.Suppliers = allSuppliers.list
	report.Warnings = findingViews(merged)
	return report, nil
}

func (s *traceService) TraceChain(ctx context.Context, id uuid.UUID) (*dto.ChainReport, error) {
	kinds, err := s.repo.Identify(ctx, id)
	if err != nil {
		return nil, upstream(err)
	}
	for _, want := range chainSeedKinds {
		for _, k := range kinds {
			if k == want {
				return s.chain(ctx, lineage.NewKey(k, id))
			}
		}
	}
	if len(kinds) > 0 {
		return nil, fmt.Errorf("%w: %s is a %s, a chain starts from a lot or package",
			lineage.ErrInvalidArgument, id, kinds[0])
	}
	return nil, fmt.Errorf("%w: no lot or package with id %s", lineage.ErrNotFound, id)
}

func (s *traceService) TraceBarcode(ctx context.Context, code string) (*dto.ChainReport, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty barcode", lineage.ErrInvalidArgument)
	}
	key, err := s.repo.ResolveBarcode(ctx, code)
	if err != nil {
		return nil, upstream(err)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: barcode %q does not resolve to a lot or package", lineage.ErrNotFound, code)
	}
	return s.chain(ctx, *key)
}

func (s *traceService) chain(ctx context.Context, seed lineage.Key) (*dto.ChainReport, error) {
	g, err := s.loader.Load(ctx, seed, lineage.Forward)
	if err != nil {
		return nil, err
	}
	res, err := lineage.Chain(g, seed)
	if err != nil {
		return nil, err
	}
	findings := lineage.MergeFindings(res.Findings, lineage.Validate(g))
	logFindings("trace_chain", seed, findings)

	root, _ := g.Node(seed)
	return &dto.ChainReport{
		Seed:     dto.ChainSeed{Kind: string(seed.Kind), ID: seed.ID.String(), Label: labelOf(root)},
		Nodes:    chainNodes(g, res),
		Warnings: findingViews(findings),
	}, nil
}

// missing turns a seed miss into NotFound, or InvalidArgument when the id
// exists under another kind.
func (s *traceService) missing(ctx context.Context, id uuid.UUID, want lineage.Kind) error {
	kinds, err := s.repo.Identify(ctx, id)
	if err != nil {
		return upstream(err)
	}
	if len(kinds) > 0 {
		return fmt.Errorf("%w: %s is a %s, not a %s", lineage.ErrInvalidArgument, id, kinds[0], want)
	}
	return fmt.Errorf("%w: no %s with id %s", lineage.ErrNotFound, want, id)
}

// upstream classifies a repository failure outside the loader.
func upstream(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", lineage.ErrUpstreamUnavailable, err)
}

func logFindings(op string, seed lineage.Key, fs []lineage.Finding) {
	if len(fs) == 0 {
		return
	}
	codes := make([]string, 0, len(fs))
	for _, f := range fs {
		codes = append(codes, string(f.Code))
	}
	log.Warn().
		Str("op", op).
		Str("seed", seed.String()).
		Strs("codes", codes).
		Msg("trace: data-quality findings")
}
