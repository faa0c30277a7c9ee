package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCorruptLedger is returned when a persisted ledger document cannot be
// decoded into a valid ledger.
var ErrCorruptLedger = errors.New("corrupt ledger document")

// Ledger is a shopper's cart: at most one line per ID plus the drawer
// visibility flag. Every transition returns a new Ledger and leaves the
// receiver's lines untouched, so a Ledger value can be shared freely.
type Ledger struct {
	Lines []CartLine
	Open  bool
}

// NewLedger returns an empty, closed ledger.
func NewLedger() Ledger {
	return Ledger{Lines: []CartLine{}}
}

func (l Ledger) index(id string) int {
	for i := range l.Lines {
		if l.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (l Ledger) copyLines() []CartLine {
	lines := make([]CartLine, len(l.Lines))
	copy(lines, l.Lines)
	return lines
}

// Find returns the line with the given id.
func (l Ledger) Find(id string) (CartLine, bool) {
	if i := l.index(id); i >= 0 {
		return l.Lines[i], true
	}
	return CartLine{}, false
}

// AddItem increments the quantity of an existing line or appends the
// candidate with quantity 1. The existing snapshot is kept on increment.
func (l Ledger) AddItem(c LineCandidate) Ledger {
	lines := l.copyLines()
	if i := l.index(c.ID); i >= 0 {
		lines[i].Quantity++
	} else {
		lines = append(lines, c.line(1))
	}
	return Ledger{Lines: lines, Open: l.Open}
}

// RemoveItem drops the line with the given id. Unknown ids are ignored.
func (l Ledger) RemoveItem(id string) Ledger {
	i := l.index(id)
	if i < 0 {
		return l
	}
	lines := make([]CartLine, 0, len(l.Lines)-1)
	lines = append(lines, l.Lines[:i]...)
	lines = append(lines, l.Lines[i+1:]...)
	return Ledger{Lines: lines, Open: l.Open}
}

// UpdateQuantity sets a line's quantity exactly. A quantity of zero or less
// removes the line.
func (l Ledger) UpdateQuantity(id string, quantity int) Ledger {
	if quantity <= 0 {
		return l.RemoveItem(id)
	}
	i := l.index(id)
	if i < 0 {
		return l
	}
	lines := l.copyLines()
	lines[i].Quantity = quantity
	return Ledger{Lines: lines, Open: l.Open}
}

// Clear empties the ledger. Visibility is unaffected.
func (l Ledger) Clear() Ledger {
	return Ledger{Lines: []CartLine{}, Open: l.Open}
}

// Toggle flips the visibility flag.
func (l Ledger) Toggle() Ledger {
	return l.WithOpen(!l.Open)
}

// WithOpen sets the visibility flag.
func (l Ledger) WithOpen(open bool) Ledger {
	return Ledger{Lines: l.Lines, Open: open}
}

// TotalItemCount sums quantities across all lines.
func (l Ledger) TotalItemCount() int {
	var n int
	for _, line := range l.Lines {
		n += line.Quantity
	}
	return n
}

// TotalPrice sums UnitPrice × Quantity across all lines without rounding.
func (l Ledger) TotalPrice() decimal.Decimal {
	return ComputeSubtotal(l.Lines)
}

// IsEmpty reports whether the ledger has no lines.
func (l Ledger) IsEmpty() bool {
	return len(l.Lines) == 0
}

// SameLines reports whether both ledgers hold the same lines in the same order.
func (l Ledger) SameLines(o Ledger) bool {
	if len(l.Lines) != len(o.Lines) {
		return false
	}
	for i := range l.Lines {
		a, b := l.Lines[i], o.Lines[i]
		if a.ID != b.ID || a.Kind != b.Kind || a.Slug != b.Slug || a.Name != b.Name ||
			a.Quantity != b.Quantity || !a.UnitPrice.Equal(b.UnitPrice) {
			return false
		}
	}
	return true
}

// Equal reports whether lines and visibility match.
func (l Ledger) Equal(o Ledger) bool {
	return l.Open == o.Open && l.SameLines(o)
}

// ledgerDocument is the persisted form. Only the lines are stored; the
// visibility flag is presentation state and lives elsewhere.
type ledgerDocument struct {
	Items []CartLine `json:"items"`
}

// EncodeLedger serializes the ledger's lines.
func EncodeLedger(l Ledger) ([]byte, error) {
	items := l.Lines
	if items == nil {
		items = []CartLine{}
	}
	data, err := json.Marshal(ledgerDocument{Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// DecodeLedger parses a document written by EncodeLedger. Documents that are
// not valid JSON, or that break a ledger invariant, yield ErrCorruptLedger.
func DecodeLedger(data []byte) (Ledger, error) {
	var doc ledgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Ledger{}, fmt.Errorf("%w: %w", ErrCorruptLedger, err)
	}
	if doc.Items == nil {
		return Ledger{}, fmt.Errorf("%w: missing items", ErrCorruptLedger)
	}

	seen := make(map[string]struct{}, len(doc.Items))
	for _, line := range doc.Items {
		if line.ID == "" {
			return Ledger{}, fmt.Errorf("%w: line without id", ErrCorruptLedger)
		}
		if _, dup := seen[line.ID]; dup {
			return Ledger{}, fmt.Errorf("%w: duplicate line %s", ErrCorruptLedger, line.ID)
		}
		seen[line.ID] = struct{}{}
		if !line.Kind.Valid() {
			return Ledger{}, fmt.Errorf("%w: line %s has unknown type %q", ErrCorruptLedger, line.ID, line.Kind)
		}
		if line.Quantity <= 0 {
			return Ledger{}, fmt.Errorf("%w: line %s has quantity %d", ErrCorruptLedger, line.ID, line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return Ledger{}, fmt.Errorf("%w: line %s has negative price", ErrCorruptLedger, line.ID)
		}
	}

	return Ledger{Lines: doc.Items}, nil
}
