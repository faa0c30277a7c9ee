package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	"github.com/vedantkulkarni1234/website/internal/notify"
	"github.com/vedantkulkarni1234/website/internal/payment/mock"
	"github.com/vedantkulkarni1234/website/internal/repository/memory"
	redisrepo "github.com/vedantkulkarni1234/website/internal/repository/redis"
	"github.com/vedantkulkarni1234/website/internal/service"
	"github.com/vedantkulkarni1234/website/pkg/health"
	"github.com/vedantkulkarni1234/website/pkg/httputil"
	"github.com/vedantkulkarni1234/website/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

const testSession = "0b7f0a5e-8c55-4a55-9d3b-5d8f2d1b9a10"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupRouter wires the production router over miniredis, the embedded
// catalog and the mock payment provider.
func setupRouter(t *testing.T) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	return setupRouterWith(t, nil)
}

func setupRouterWith(t *testing.T, tweak func(*RouterConfig)) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	logger := testLogger()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	catalogRepo, err := memory.NewCatalogRepository()
	require.NoError(t, err)

	producer := event.NewProducer(nil, logger)
	catalog := service.NewCatalogService(catalogRepo, logger)
	ledger := service.NewLedgerService(redisrepo.NewLedgerRepository(client, "hexstrike-cart", time.Hour), catalog, producer, logger)
	reg := prometheus.NewRegistry()
	checkout := service.NewCheckoutService(
		ledger,
		catalog,
		redisrepo.NewCheckoutRepository(client, "hexstrike-checkout", time.Hour),
		mock.New(0, logger),
		producer,
		service.NewCheckoutMetrics(reg),
		service.CheckoutConfig{
			Promo:          domain.DefaultPromo(),
			Currency:       "usd",
			SuccessURL:     "https://hexstrike.dev/checkout/success",
			CancelURL:      "https://hexstrike.dev/checkout",
			PaymentTimeout: time.Second,
		},
		logger,
	)
	contact := service.NewContactService(notify.NewLogSender(logger), producer, logger)

	cfg := RouterConfig{
		Health:      health.NewHandler(),
		Metrics:     middleware.NewHTTPMetrics(reg, "storefront"),
		Gatherer:    reg,
		CORS:        middleware.DefaultCORSConfig(),
		ServiceName: "storefront",
	}
	if tweak != nil {
		tweak(&cfg)
	}

	router := NewRouter(Handlers{
		Catalog:  NewCatalogHandler(catalog, 50, logger),
		Cart:     NewCartHandler(ledger, logger),
		Checkout: NewCheckoutHandler(checkout, logger),
		Contact:  NewContactHandler(contact, logger),
	}, cfg, logger)

	return router, mr
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(middleware.SessionHeader, testSession)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the envelope's data field into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// decodeList reads a {data, total} listing.
func decodeList(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

// ============================================================================
// Infrastructure routes
// ============================================================================

func TestRouter_HealthAndMetrics(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, router, http.MethodGet, "/api/extensions", nil)
	rec = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_SessionIssuedWhenMissing(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.SessionHeader))
}

func TestRouter_MalformedSessionRejected(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(middleware.SessionHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeError(t, rec).Code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader("type=extension"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cart/items/ext-001", nil)
	req.Header.Set("Origin", "https://hexstrike.dev")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestRouter_ThrottlesContactPerSession(t *testing.T) {
	router, _ := setupRouterWith(t, func(cfg *RouterConfig) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 1
	})
	body := map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Pricing",
		"message": "Is there a student discount?",
	}

	first := do(t, router, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := do(t, router, http.MethodPost, "/api/contact", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, second).Code)

	// Reads are never throttled.
	cart := do(t, router, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, cart.Code)
}
