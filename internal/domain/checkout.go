package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrCorruptCheckoutState is returned when a persisted checkout state cannot
// be read back.
var ErrCorruptCheckoutState = errors.New("corrupt checkout state")

// CheckoutStatus is the state of a session's checkout submission.
type CheckoutStatus string

const (
	CheckoutIdle       CheckoutStatus = "idle"
	CheckoutSubmitting CheckoutStatus = "submitting"
	CheckoutRedirected CheckoutStatus = "redirected"
	CheckoutFailed     CheckoutStatus = "failed"
)

// PromoState records the promo code a session applied. Applied never goes
// back to false within a session.
type PromoState struct {
	Code    string `json:"code,omitempty"`
	Applied bool   `json:"applied"`
}

// CheckoutState is the per-session checkout record.
type CheckoutState struct {
	Status           CheckoutStatus `json:"status"`
	Promo            PromoState     `json:"promo"`
	RedirectURL      string         `json:"redirect_url,omitempty"`
	PaymentSessionID string         `json:"payment_session_id,omitempty"`
	FailureReason    string         `json:"failure_reason,omitempty"`
	SubmissionID     string         `json:"submission_id,omitempty"`
	Attempts         int            `json:"attempts"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewCheckoutState returns an idle state with no promo applied.
func NewCheckoutState() CheckoutState {
	return CheckoutState{Status: CheckoutIdle}
}

// CanSubmit reports whether a new submission may start. Only an in-flight
// submission blocks; failed and redirected sessions may submit again.
func (s CheckoutState) CanSubmit() bool {
	return s.Status != CheckoutSubmitting
}

// ApplyPromo marks the code as applied. Applying again keeps the first code.
func (s CheckoutState) ApplyPromo(code string, now time.Time) CheckoutState {
	if s.Promo.Applied {
		return s
	}
	s.Promo = PromoState{Code: code, Applied: true}
	s.UpdatedAt = now
	return s
}

// BeginSubmission moves to Submitting and clears the previous outcome.
// submissionID identifies this attempt to the payment provider and must be
// unique across the session's lifetime, including after the state expires.
func (s CheckoutState) BeginSubmission(submissionID string, now time.Time) CheckoutState {
	s.Status = CheckoutSubmitting
	s.SubmissionID = submissionID
	s.RedirectURL = ""
	s.PaymentSessionID = ""
	s.FailureReason = ""
	s.Attempts++
	s.UpdatedAt = now
	return s
}

// Redirected records a successful handoff to the payment provider.
func (s CheckoutState) Redirected(sessionID, redirectURL string, now time.Time) CheckoutState {
	s.Status = CheckoutRedirected
	s.PaymentSessionID = sessionID
	s.RedirectURL = redirectURL
	s.FailureReason = ""
	s.UpdatedAt = now
	return s
}

// Failed records a failed handoff. reason is kept for operators, not shown
// to shoppers.
func (s CheckoutState) Failed(reason string, now time.Time) CheckoutState {
	s.Status = CheckoutFailed
	s.FailureReason = reason
	s.UpdatedAt = now
	return s
}

// DirectPurchase references a single catalog entry bought without the cart.
type DirectPurchase struct {
	Kind Kind
	Slug string
}

// CheckoutSelection is the set of lines a checkout prices: either a snapshot
// of the ledger or exactly one direct-purchase line.
type CheckoutSelection struct {
	Lines  []CartLine `json:"lines"`
	Direct bool       `json:"direct"`
}

// SelectLedger snapshots the ledger's lines.
func SelectLedger(l Ledger) CheckoutSelection {
	lines := make([]CartLine, len(l.Lines))
	copy(lines, l.Lines)
	return CheckoutSelection{Lines: lines}
}

// SelectDirect synthesizes a single line of quantity 1 at the entry's
// effective price.
func SelectDirect(e CatalogEntry) CheckoutSelection {
	return CheckoutSelection{
		Lines:  []CartLine{e.Candidate().line(1)},
		Direct: true,
	}
}

// IsEmpty reports whether there is nothing to pay for.
func (s CheckoutSelection) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Subtotal sums the selection's lines.
func (s CheckoutSelection) Subtotal() decimal.Decimal {
	return ComputeSubtotal(s.Lines)
}

// Summary is a priced checkout selection.
type Summary struct {
	Lines     []CartLine      `json:"lines"`
	Direct    bool            `json:"direct"`
	Empty     bool            `json:"empty"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	Promo     PromoState      `json:"promo"`
	Status    CheckoutStatus  `json:"status"`
}

// Summarize prices a selection under the given promo state.
func Summarize(sel CheckoutSelection, promo Promo, state CheckoutState) Summary {
	subtotal := sel.Subtotal()
	var count int
	for _, line := range sel.Lines {
		count += line.Quantity
	}
	lines := sel.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return Summary{
		Lines:     lines,
		Direct:    sel.Direct,
		Empty:     sel.IsEmpty(),
		ItemCount: count,
		Subtotal:  subtotal,
		Discount:  promo.Discount(subtotal, state.Promo.Applied),
		Total:     promo.ComputeTotal(subtotal, state.Promo.Applied),
		Promo:     state.Promo,
		Status:    state.Status,
	}
}
