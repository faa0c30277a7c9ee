// Package payment describes the hosted payment collaborator that checkout
// hands a priced selection to.
package payment

import (
	"context"

	"github.com/vedantkulkarni1234/website/internal/domain"
)

// LineItem is one priced line sent to the provider. Amounts are in minor
// units (cents).
type LineItem struct {
	Name       string `json:"name"`
	Kind       string `json:"type"`
	Slug       string `json:"slug"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

// SessionInput is everything the provider needs to open a payment page.
type SessionInput struct {
	IdempotencyKey string            `json:"-"`
	CustomerEmail  string            `json:"customer_email"`
	Currency       string            `json:"currency"`
	Lines          []LineItem        `json:"line_items"`
	DiscountAmount int64             `json:"discount_amount"`
	TotalAmount    int64             `json:"total_amount"`
	SuccessURL     string            `json:"success_url"`
	CancelURL      string            `json:"cancel_url"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Session is the provider's answer: where to send the shopper.
type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"url"`
}

// Provider creates hosted payment sessions.
type Provider interface {
	CreateSession(ctx context.Context, in *SessionInput) (*Session, error)
}

// LineItems converts cart lines into provider line items.
func LineItems(lines []domain.CartLine) []LineItem {
	items := make([]LineItem, len(lines))
	for i, l := range lines {
		items[i] = LineItem{
			Name:       l.Name,
			Kind:       string(l.Kind),
			Slug:       l.Slug,
			UnitAmount: domain.ToMinorUnits(l.UnitPrice),
			Quantity:   l.Quantity,
		}
	}
	return items
}
