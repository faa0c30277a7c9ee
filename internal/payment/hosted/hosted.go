// Package hosted talks to a hosted-checkout payment provider over HTTP.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vedantkulkarni1234/website/internal/payment"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/httpclient"
)

const sessionsPath = "/v1/checkout/sessions"

// CircuitOpenFallback answers for the provider while its breaker is open.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("payment provider is temporarily unavailable, please retry after 30 seconds")
}

// Provider creates checkout sessions through the provider's REST API.
type Provider struct {
	client  httpclient.Doer
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// New creates a hosted provider. client is normally a
// *httpclient.CircuitBreakerClient.
func New(client httpclient.Doer, baseURL, apiKey string, logger *slog.Logger) *Provider {
	return &Provider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

type createSessionRequest struct {
	Mode string `json:"mode"`
	*payment.SessionInput
}

// CreateSession implements payment.Provider.
func (p *Provider) CreateSession(ctx context.Context, in *payment.SessionInput) (*payment.Session, error) {
	body, err := json.Marshal(createSessionRequest{Mode: "payment", SessionInput: in})
	if err != nil {
		return nil, fmt.Errorf("marshal payment session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+sessionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create payment session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if in.IdempotencyKey != "" {
		req.Header.Set(httpclient.IdempotencyKeyHeader, in.IdempotencyKey)
	}

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call payment provider: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "payment")
	}
	defer resp.Body.Close()

	var sess payment.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("decode payment session response: %w", err)
	}
	if sess.ID == "" || sess.RedirectURL == "" {
		return nil, fmt.Errorf("payment provider returned an incomplete session")
	}

	p.logger.InfoContext(ctx, "payment session created",
		slog.String("payment_session_id", sess.ID),
		slog.Int64("total_amount", in.TotalAmount),
	)

	return &sess, nil
}
