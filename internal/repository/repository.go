package repository

import (
	"context"
	"time"

	"github.com/vedantkulkarni1234/website/internal/domain"
)

// LedgerWriter receives the writes of a ledger update.
type LedgerWriter interface {
	// SaveLines writes the ledger's lines, replacing what was stored.
	SaveLines(ctx context.Context, sessionID string, ledger domain.Ledger) error

	// SaveVisibility writes the drawer visibility flag.
	SaveVisibility(ctx context.Context, sessionID string, open bool) error
}

// LedgerUpdateFunc computes a session's next ledger from current and hands
// the changes to w. It may run more than once for a single update.
type LedgerUpdateFunc func(current domain.Ledger, w LedgerWriter) error

// LedgerRepository persists a shopper's ledger per session.
type LedgerRepository interface {
	LedgerWriter

	// Get loads the ledger lines and visibility flag. A session with nothing
	// stored yields an empty ledger. An unreadable document is reported with
	// an error wrapping domain.ErrCorruptLedger.
	Get(ctx context.Context, sessionID string) (domain.Ledger, error)

	// Update runs fn on the stored ledger and applies its writes atomically.
	// If the ledger changes underneath, fn runs again on the fresh value, so
	// concurrent updates of one session never lose each other's changes.
	Update(ctx context.Context, sessionID string, fn LedgerUpdateFunc) error

	// Delete removes every key stored for the session.
	Delete(ctx context.Context, sessionID string) error
}

// CheckoutRepository persists promo and submission state per session.
type CheckoutRepository interface {
	// GetState returns the stored state, or an idle state when none exists.
	// An unreadable document is reported with an error wrapping
	// domain.ErrCorruptCheckoutState.
	GetState(ctx context.Context, sessionID string) (domain.CheckoutState, error)

	// UpdateState applies fn to the stored state and writes the result
	// atomically, re-running fn on the fresh state when another request
	// changed it first. An unreadable document is replaced: fn then starts
	// from an idle state. The written state is returned.
	UpdateState(ctx context.Context, sessionID string, fn func(domain.CheckoutState) domain.CheckoutState) (domain.CheckoutState, error)

	// AcquireSubmission takes the session's submission guard for ttl. It
	// returns false when another submission already holds it.
	AcquireSubmission(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)

	// ReleaseSubmission drops the guard.
	ReleaseSubmission(ctx context.Context, sessionID string) error

	// SubmissionHeld reports whether the guard is currently held.
	SubmissionHeld(ctx context.Context, sessionID string) (bool, error)
}

// CatalogRepository is the read-only source of extensions and bundles.
// Listings are returned in catalog order.
type CatalogRepository interface {
	ListExtensions(ctx context.Context, filter domain.ExtensionFilter) ([]domain.Extension, error)
	GetExtension(ctx context.Context, slug string) (*domain.Extension, error)
	ListBundles(ctx context.Context) ([]domain.Bundle, error)
	GetBundle(ctx context.Context, slug string) (*domain.Bundle, error)
}
