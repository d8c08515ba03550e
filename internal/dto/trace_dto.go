package dto

import (
	"haccptrace/internal/lineage"

	"github.com/shopspring/decimal"
)

// ─── Shared views ────────────────────────────────────────────────────────────

// Label carries the human identifier of a node; exactly one field is set.
type Label struct {
	LotNumber     string `json:"lotNumber,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Description   string `json:"description,omitempty"`
}

// NodeView is a lot, package or sale with its stored attributes.
type NodeView struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Label
	Quantity          *decimal.Decimal `json:"quantity,omitempty"`
	QuantityRemaining *decimal.Decimal `json:"quantityRemaining,omitempty"`
	MeasureUnit       string           `json:"measureUnit,omitempty"`
	Date              string           `json:"date,omitempty"`       // YYYY-MM-DD
	ExpiryDate        string           `json:"expiryDate,omitempty"` // YYYY-MM-DD
	Food              *lineage.Food    `json:"food,omitempty"`
	Supplier          *lineage.Party   `json:"supplier,omitempty"`
	Customer          *lineage.Party   `json:"customer,omitempty"`
}

// TraceStep is a node reached by a closure walk.
type TraceStep struct {
	NodeView
	Level int    `json:"level"`
	Path  string `json:"path"`
	Via   string `json:"via,omitempty"` // edge kind the node was first reached through
}

// FindingView is an advisory data-quality warning.
type FindingView struct {
	Code    string       `json:"code"`
	Subject *lineage.Key `json:"subject,omitempty"`
	Message string       `json:"message"`
}

// LotRef names a lot without its attributes.
type LotRef struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	LotNumber string `json:"lotNumber"`
}

type QualityCheckView struct {
	ID        string  `json:"id"`
	CheckDate string  `json:"checkDate"`
	Passed    bool    `json:"passed"`
	Inspector string  `json:"inspector"`
	Notes     *string `json:"notes,omitempty"`
}

// ─── Reports ─────────────────────────────────────────────────────────────────

// TraceReport answers "where did this lot come from and where did it go".
// Forward and Backward exclude the lot itself.
type TraceReport struct {
	Lot           NodeView           `json:"lot"`
	QualityChecks []QualityCheckView `json:"qualityChecks"`
	Forward       []TraceStep        `json:"forward"`
	Backward      []TraceStep        `json:"backward"`
	Suppliers     []lineage.Party    `json:"suppliers"`
	Customers     []lineage.Party    `json:"customers"`
	Warnings      []FindingView      `json:"warnings"`
}

type CustomerSummary struct {
	TotalSales    int             `json:"totalSales"`
	FirstPurchase string          `json:"firstPurchase,omitempty"`
	LastPurchase  string          `json:"lastPurchase,omitempty"`
	UpstreamLots  []LotRef        `json:"upstreamLots"`
	Suppliers     []lineage.Party `json:"suppliers"`
}

// SaleTrace is one sale of a customer with its resolved origin.
type SaleTrace struct {
	Sale      NodeView        `json:"sale"`
	Origin    []TraceStep     `json:"origin"`
	Suppliers []lineage.Party `json:"suppliers"`
}

type CustomerTraceReport struct {
	Customer lineage.Party   `json:"customer"`
	Summary  CustomerSummary `json:"summary"`
	Sales    []SaleTrace     `json:"sales"`
	Warnings []FindingView   `json:"warnings"`
}

type ChainSeed struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Label
}

type ChainNode struct {
	Level int    `json:"level"`
	Kind  string `json:"kind"`
	Label
	Path string `json:"path"`
	ID   string `json:"id"`
}

// ChainReport is the forward chain of a lot or package ordered by
// (level, label).
type ChainReport struct {
	Seed     ChainSeed     `json:"seed"`
	Nodes    []ChainNode   `json:"nodes"`
	Warnings []FindingView `json:"warnings"`
}

// ─── Recall ──────────────────────────────────────────────────────────────────

type RecallRequest struct {
	LotID   string `json:"lotId"   validate:"required,uuid"`
	LotType string `json:"lotType" validate:"required,oneof=incoming outgoing IncomingLot OutgoingLot"`
	Reason  string `json:"reason"  validate:"omitempty,max=500"`
}

type RecallResponse struct {
	Status            string          `json:"status"` // queued
	Lot               NodeView        `json:"lot"`
	AffectedCustomers []lineage.Party `json:"affectedCustomers"`
	Warnings          int             `json:"warnings"`
}
