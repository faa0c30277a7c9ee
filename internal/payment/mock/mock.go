// Package mock is an in-process payment provider for local development.
// It never talks to a network and always redirects to the success URL.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vedantkulkarni1234/website/internal/payment"
)

// Provider fakes a hosted checkout.
type Provider struct {
	latency time.Duration
	logger  *slog.Logger
}

// New creates a mock provider that waits latency before answering.
func New(latency time.Duration, logger *slog.Logger) *Provider {
	return &Provider{latency: latency, logger: logger}
}

// CreateSession implements payment.Provider.
func (p *Provider) CreateSession(ctx context.Context, in *payment.SessionInput) (*payment.Session, error) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mock payment session: %w", ctx.Err())
		case <-timer.C:
		}
	}

	id := "mock_cs_" + uuid.NewString()
	redirect, err := url.Parse(in.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("parse success url: %w", err)
	}
	q := redirect.Query()
	q.Set("session_id", id)
	redirect.RawQuery = q.Encode()

	p.logger.InfoContext(ctx, "mock payment session created",
		slog.String("payment_session_id", id),
		slog.Int64("total_amount", in.TotalAmount),
		slog.String("currency", in.Currency),
	)

	return &payment.Session{ID: id, RedirectURL: redirect.String()}, nil
}
