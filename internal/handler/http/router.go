package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vedantkulkarni1234/website/pkg/health"
	"github.com/vedantkulkarni1234/website/pkg/middleware"
)

// Handlers groups the API handlers mounted by NewRouter.
type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Contact  *ContactHandler
}

// RouterConfig carries the cross-cutting pieces the router mounts.
type RouterConfig struct {
	Health      *health.Handler
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	CORS        middleware.CORSConfig
	ServiceName string

	// RateLimitRPS and RateLimitBurst throttle checkout submission and the
	// contact form per session. A zero RPS disables throttling.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		throttle = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session())
		r.Use(middleware.RequestLogger(logger))
		r.Use(ContentTypeJSON)

		r.Get("/extensions", h.Catalog.ListExtensions)
		r.Get("/extensions/{slug}", h.Catalog.GetExtension)
		r.Get("/bundles", h.Catalog.ListBundles)
		r.Get("/bundles/{slug}", h.Catalog.GetBundle)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)

			r.Post("/items", h.Cart.AddItem)
			r.Patch("/items/{id}", h.Cart.UpdateItemQuantity)
			r.Delete("/items/{id}", h.Cart.RemoveItem)

			r.Post("/toggle", h.Cart.Toggle)
			r.Post("/open", h.Cart.Open)
			r.Post("/close", h.Cart.Close)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/summary", h.Checkout.GetSummary)
			r.Post("/promo", h.Checkout.ApplyPromo)
			r.With(throttle).Post("/submit", h.Checkout.Submit)
		})

		r.With(throttle).Post("/contact", h.Contact.SubmitContact)
	})

	return r
}
