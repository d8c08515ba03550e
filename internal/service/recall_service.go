package service

import (
	"context"
	"fmt"
	"time"

	"haccptrace/internal/dto"
	"haccptrace/internal/lineage"
	"haccptrace/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecallDispatcher queues recall alerts. *worker.Dispatcher implements it.
type RecallDispatcher interface {
	EnqueueRecallAlert(ctx context.Context, payload worker.RecallAlertPayload) error
}

// RecallService traces a lot and queues an alert listing everyone who
// received material from it. It does not write to the database.
type RecallService interface {
	NotifyRecall(ctx context.Context, req dto.RecallRequest) (*dto.RecallResponse, error)
}

type recallService struct {
	trace      TraceService
	dispatcher RecallDispatcher
	recipients []string
}

func NewRecallService(trace TraceService, dispatcher RecallDispatcher, notifyEmail string) RecallService {
	var recipients []string
	if notifyEmail != "" {
		recipients = []string{notifyEmail}
	}
	return &recallService{trace: trace, dispatcher: dispatcher, recipients: recipients}
}

func (s *recallService) NotifyRecall(ctx context.Context, req dto.RecallRequest) (*dto.RecallResponse, error) {
	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, fmt.Errorf("%w: lot id %q", lineage.ErrInvalidArgument, req.LotID)
	}
	kind, err := lineage.ParseKind(req.LotType)
	if err != nil {
		return nil, err
	}

	report, err := s.trace.TraceLot(ctx, lotID, kind)
	if err != nil {
		return nil, err
	}

	payload := worker.RecallAlertPayload{
		Recipients:  s.recipients,
		LotKind:     report.Lot.Kind,
		LotID:       report.Lot.ID,
		LotNumber:   report.Lot.LotNumber,
		Reason:      req.Reason,
		Customers:   make([]worker.RecallCustomer, 0, len(report.Customers)),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, c := range report.Customers {
		payload.Customers = append(payload.Customers, worker.RecallCustomer{Name: c.Name, TaxID: c.TaxID})
	}
	for _, w := range report.Warnings {
		payload.Warnings = append(payload.Warnings, w.Code+": "+w.Message)
	}

	if err := s.dispatcher.EnqueueRecallAlert(ctx, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", lineage.ErrUpstreamUnavailable, err)
	}
	log.Info().
		Str("lot", report.Lot.LotNumber).
		Int("customers", len(report.Customers)).
		Msg("recall: alert queued")

	return &dto.RecallResponse{
		Status:            "queued",
		Lot:               report.Lot,
		AffectedCustomers: report.Customers,
		Warnings:          len(report.Warnings),
	}, nil
}
