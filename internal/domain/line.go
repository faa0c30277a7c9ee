package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two purchasable catalog types.
type Kind string

const (
	KindExtension Kind = "extension"
	KindBundle    Kind = "bundle"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindExtension || k == KindBundle
}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown item kind %q", s)
	}
	return k, nil
}

// CartLine is one aggregated entry in a ledger. Name and UnitPrice are
// snapshots taken when the line was first added.
type CartLine struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"type"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineCandidate is what a caller hands to AddItem; the ledger owns Quantity.
type LineCandidate struct {
	ID        string
	Kind      Kind
	Slug      string
	Name      string
	UnitPrice decimal.Decimal
}

// Validate checks the fields a ledger relies on.
func (c LineCandidate) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("line id is required")
	case !c.Kind.Valid():
		return fmt.Errorf("unknown item kind %q", c.Kind)
	case c.Name == "":
		return fmt.Errorf("line name is required")
	case c.UnitPrice.IsNegative():
		return fmt.Errorf("unit price must not be negative")
	}
	return nil
}

func (c LineCandidate) line(quantity int) CartLine {
	return CartLine{
		ID:        c.ID,
		Kind:      c.Kind,
		Slug:      c.Slug,
		Name:      c.Name,
		UnitPrice: c.UnitPrice,
		Quantity:  quantity,
	}
}
