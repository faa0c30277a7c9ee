package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/service"
	apperrors "github.com/vedantkulkarni1234/website/pkg/errors"
	"github.com/vedantkulkarni1234/website/pkg/httputil"
	"github.com/vedantkulkarni1234/website/pkg/pagination"
)

// CatalogHandler serves the read-only extension and bundle catalog.
type CatalogHandler struct {
	service  *service.CatalogService
	maxLimit int
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler. maxLimit caps the
// page size of extension listings.
func NewCatalogHandler(svc *service.CatalogService, maxLimit int, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  svc,
		maxLimit: maxLimit,
		logger:   logger,
	}
}

// ListExtensions handles GET /api/extensions
func (h *CatalogHandler) ListExtensions(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r, h.maxLimit)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}

	filter := domain.ExtensionFilter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("featured must be true or false"), h.logger)
			return
		}
		filter.FeaturedOnly = featured
	}

	exts, err := h.service.ListExtensions(r.Context(), filter, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(toExtensionResponses(exts)))
}

// GetExtension handles GET /api/extensions/{slug}
func (h *CatalogHandler) GetExtension(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetExtension(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toExtensionDetailResponse(detail)})
}

// ListBundles handles GET /api/bundles
func (h *CatalogHandler) ListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := h.service.ListBundles(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out := make([]BundleResponse, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, toBundleResponse(b))
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(out))
}

// GetBundle handles GET /api/bundles/{slug}
func (h *CatalogHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetBundle(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toBundleResponse(*detail)})
}
