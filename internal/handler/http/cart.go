package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/service"
	"github.com/vedantkulkarni1234/website/pkg/httputil"
	"github.com/vedantkulkarni1234/website/pkg/validator"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service *service.LedgerService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.LedgerService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest references the catalog entry to add. Name and price are
// taken from the catalog, never from the client.
type AddItemRequest struct {
	Type string `json:"type" validate:"required,oneof=extension bundle"`
	Slug string `json:"slug" validate:"required,slug"`
}

// UpdateQuantityRequest sets a line's quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// --- Handlers ---

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.Get(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(ledger)})
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ledger, err := h.service.AddCatalogItem(r.Context(), sessionID(r), domain.Kind(req.Type), req.Slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(ledger)})
}

// UpdateItemQuantity handles PATCH /api/cart/items/{id}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ledger, err := h.service.UpdateQuantity(r.Context(), sessionID(r), chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(ledger)})
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.RemoveItem(r.Context(), sessionID(r), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(ledger)})
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.Clear(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(ledger)})
}

// Toggle handles POST /api/cart/toggle
func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.visibility(w, r, h.service.Toggle)
}

// Open handles POST /api/cart/open
func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.visibility(w, r, h.service.Open)
}

// Close handles POST /api/cart/close
func (h *CartHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.visibility(w, r, h.service.Close)
}

func (h *CartHandler) visibility(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sessionID string) (domain.Ledger, error)) {
	ledger, err := fn(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(ledger)})
}
