package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/service"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/httputil"
	"github.com/vedantkulkarni1234/website/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PromoRequest applies a promo code. Type and Slug select a direct purchase
// instead of the cart.
type PromoRequest struct {
	Code string `json:"code" validate:"required,max=64"`
	Type string `json:"type,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// SubmitRequest starts the payment handoff. Email is checked by the service
// so a bad address gets the same error whatever the transport.
type SubmitRequest struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
	Slug  string `json:"slug,omitempty"`
}

// directPurchase turns an optional type/slug pair into a direct purchase.
// Both empty means "check out the cart".
func directPurchase(kind, slug string) (*domain.DirectPurchase, error) {
	kind, slug = strings.TrimSpace(kind), strings.TrimSpace(slug)
	if kind == "" && slug == "" {
		return nil, nil
	}
	if slug == "" {
		return nil, apperrors.InvalidInput("slug is required for a direct purchase")
	}
	k, err := domain.ParseKind(strings.ToLower(kind))
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return &domain.DirectPurchase{Kind: k, Slug: slug}, nil
}

// --- Handlers ---

// GetSummary handles GET /api/checkout/summary
func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	direct, err := directPurchase(r.URL.Query().Get("type"), r.URL.Query().Get("slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.Summary(r.Context(), sessionID(r), direct)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toSummaryResponse(summary)})
}

// ApplyPromo handles POST /api/checkout/promo
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	direct, err := directPurchase(req.Type, req.Slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.ApplyPromo(r.Context(), sessionID(r), req.Code, direct)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toSummaryResponse(summary)})
}

// Submit handles POST /api/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	direct, err := directPurchase(req.Type, req.Slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.Submit(r.Context(), sessionID(r), service.SubmitInput{
		Email:  req.Email,
		Direct: direct,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SubmitResponse{
		RedirectURL:      res.RedirectURL,
		PaymentSessionID: res.PaymentSessionID,
		Summary:          toSummaryResponse(res.Summary),
	}})
}
