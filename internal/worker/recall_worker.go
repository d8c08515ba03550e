package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// RecallCustomer is one affected recipient listed in the alert.
type RecallCustomer struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id,omitempty"`
}

// RecallAlertPayload is the job envelope sent to QueueRecall.
type RecallAlertPayload struct {
	Recipients  []string         `json:"recipients"`
	LotKind     string           `json:"lot_kind"`
	LotID       string           `json:"lot_id"`
	LotNumber   string           `json:"lot_number"`
	Reason      string           `json:"reason,omitempty"`
	Customers   []RecallCustomer `json:"customers"`
	Warnings    []string         `json:"warnings,omitempty"`
	RequestedAt string           `json:"requested_at"`
}

// AlertSender delivers a plain-text alert. *infra.Mailer implements it.
type AlertSender interface {
	SendRecallAlert(to []string, subject, body string) error
}

// RecallAlertWorker mails recall notices for jobs on QueueRecall.
type RecallAlertWorker struct {
	sender AlertSender
}

func NewRecallAlertWorker(sender AlertSender) *RecallAlertWorker {
	return &RecallAlertWorker{sender: sender}
}

var _ Handler = (*RecallAlertWorker)(nil)

// Process sends one recall notice. Malformed payloads are not retried.
func (w *RecallAlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload RecallAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("recall_worker: invalid payload: %w", err))
	}
	if len(payload.Recipients) == 0 {
		log.Warn().Str("lot", payload.LotNumber).Msg("recall_worker: no recipients configured, skipping")
		return nil
	}

	subject := fmt.Sprintf("RECALL: lot %s", payload.LotNumber)
	if err := w.sender.SendRecallAlert(payload.Recipients, subject, RecallBody(payload)); err != nil {
		return err
	}
	log.Info().
		Str("lot", payload.LotNumber).
		Int("customers", len(payload.Customers)).
		Msg("recall_worker: recall alert sent")
	return nil
}

// RecallBody renders the text of a recall notice.
func RecallBody(p RecallAlertPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recall requested %s for %s %s (%s).\n", p.RequestedAt, p.LotKind, p.LotNumber, p.LotID)
	if p.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", p.Reason)
	}
	fmt.Fprintf(&b, "\nAffected customers (%d):\n", len(p.Customers))
	if len(p.Customers) == 0 {
		b.WriteString("  none recorded\n")
	}
	for _, c := range p.Customers {
		if c.TaxID != "" {
			fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.TaxID)
		} else {
			fmt.Fprintf(&b, "  - %s\n", c.Name)
		}
	}
	if len(p.Warnings) > 0 {
		fmt.Fprintf(&b, "\nData-quality warnings (%d):\n", len(p.Warnings))
		for _, w := range p.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}
