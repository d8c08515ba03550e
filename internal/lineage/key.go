package lineage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind names the entity a key refers to.
type Kind string

const (
	KindIncomingLot Kind = "IncomingLot"
	KindOutgoingLot Kind = "OutgoingLot"
	KindPackage     Kind = "Package"
	KindSale        Kind = "Sale"

	// Supplier and Customer identify parties. They are attached to lots and
	// sales as attributes and never become graph nodes.
	KindSupplier Kind = "Supplier"
	KindCustomer Kind = "Customer"
)

// IsNode reports whether entities of this kind are graph nodes.
func (k Kind) IsNode() bool {
	switch k {
	case KindIncomingLot, KindOutgoingLot, KindPackage, KindSale:
		return true
	}
	return false
}

// IsLot reports whether k is one of the two lot kinds.
func (k Kind) IsLot() bool { return k == KindIncomingLot || k == KindOutgoingLot }

// ParseKind accepts the canonical names and the short forms used in URLs
// ("incoming", "outgoing", "package", "sale").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incominglot", "incoming", "incoming_lot":
		return KindIncomingLot, nil
	case "outgoinglot", "outgoing", "outgoing_lot":
		return KindOutgoingLot, nil
	case "package":
		return KindPackage, nil
	case "sale":
		return KindSale, nil
	case "supplier":
		return KindSupplier, nil
	case "customer":
		return KindCustomer, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalidArgument, s)
}

// Key is the composite identity of a node.
type Key struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// NewKey builds a Key.
func NewKey(kind Kind, id uuid.UUID) Key { return Key{Kind: kind, ID: id} }

func (k Key) String() string { return string(k.Kind) + ":" + k.ID.String() }

// less orders keys by kind then id. Used only to break ties deterministically.
func (k Key) less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.ID.String() < o.ID.String()
}

// Direction selects which edges a load or walk follows.
type Direction uint8

const (
	Forward  Direction = 1 << iota // upstream → downstream
	Backward                       // downstream → upstream
	Both     = Forward | Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Both:
		return "both"
	}
	return "unknown"
}

// EdgeKind classifies how material moved between two nodes.
type EdgeKind string

const (
	EdgeComposition EdgeKind = "COMPOSITION" // incoming lot → outgoing lot
	EdgePackaging   EdgeKind = "PACKAGING"   // lot → package
	EdgeSale        EdgeKind = "SALE"        // lot or package → sale
)

// EdgeKindBetween returns the edge kind implied by the kinds of two endpoints,
// or false when no edge may join them.
func EdgeKindBetween(from, to Kind) (EdgeKind, bool) {
	switch {
	case from == KindIncomingLot && to == KindOutgoingLot:
		return EdgeComposition, true
	case from.IsLot() && to == KindPackage:
		return EdgePackaging, true
	case (from.IsLot() || from == KindPackage) && to == KindSale:
		return EdgeSale, true
	}
	return "", false
}
