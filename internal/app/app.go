package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/vedantkulkarni1234/website/internal/config"
	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	handler "github.com/vedantkulkarni1234/website/internal/handler/http"
	"github.com/vedantkulkarni1234/website/internal/notify"
	"github.com/vedantkulkarni1234/website/internal/payment"
	"github.com/vedantkulkarni1234/website/internal/payment/hosted"
	mockpayment "github.com/vedantkulkarni1234/website/internal/payment/mock"
	"github.com/vedantkulkarni1234/website/internal/repository"
	"github.com/vedantkulkarni1234/website/internal/repository/memory"
	"github.com/vedantkulkarni1234/website/internal/repository/postgres"
	redisrepo "github.com/vedantkulkarni1234/website/internal/repository/redis"
	"github.com/vedantkulkarni1234/website/internal/service"
	"github.com/vedantkulkarni1234/website/migrations"
	"github.com/vedantkulkarni1234/website/pkg/database"
	"github.com/vedantkulkarni1234/website/pkg/health"
	"github.com/vedantkulkarni1234/website/pkg/httpclient"
	pkgkafka "github.com/vedantkulkarni1234/website/pkg/kafka"
	"github.com/vedantkulkarni1234/website/pkg/middleware"
	"github.com/vedantkulkarni1234/website/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.closeResources()
		}
	}()

	// Tracing.
	traceCfg := tracing.DefaultConfig(serviceName)
	traceCfg.Environment = cfg.Environment
	traceCfg.Enabled = cfg.OTELEnabled
	traceCfg.OTLPEndpoint = cfg.OTELEndpoint
	traceCfg.SampleRate = cfg.OTELSampleRate
	shutdown, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.NewHandler()

	// Redis holds every session's cart and checkout state.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		URL:      cfg.RedisURL,
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	healthHandler.RegisterCritical("redis", database.RedisChecker(rdb))
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	catalogRepo, err := a.catalogRepository(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	// Domain events.
	var publisher event.Publisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled, domain events are dropped")
	}
	eventProducer := event.NewProducer(publisher, logger)

	provider, err := a.paymentProvider(reg)
	if err != nil {
		return nil, err
	}

	// Build the dependency graph.
	catalogService := service.NewCatalogService(catalogRepo, logger)
	ledgerService := service.NewLedgerService(
		redisrepo.NewLedgerRepository(rdb, cfg.CartNamespace, cfg.CartTTLDuration()),
		catalogService,
		eventProducer,
		logger,
	)
	checkoutService := service.NewCheckoutService(
		ledgerService,
		catalogService,
		redisrepo.NewCheckoutRepository(rdb, cfg.CheckoutNamespace, cfg.CartTTLDuration()),
		provider,
		eventProducer,
		service.NewCheckoutMetrics(reg),
		service.CheckoutConfig{
			Promo:          domain.Promo{Code: cfg.PromoCode, Rate: cfg.PromoRate},
			Currency:       cfg.Currency,
			SuccessURL:     cfg.CheckoutSuccessURL,
			CancelURL:      cfg.CheckoutCancelURL,
			PaymentTimeout: cfg.PaymentTimeout(),
		},
		logger,
	)
	contactService := service.NewContactService(notify.NewLogSender(logger), eventProducer, logger)

	// HTTP router.
	router := handler.NewRouter(handler.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, cfg.CatalogMaxLimit, logger),
		Cart:     handler.NewCartHandler(ledgerService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Contact:  handler.NewContactHandler(contactService, logger),
	}, handler.RouterConfig{
		Health:      healthHandler,
		Metrics:     middleware.NewHTTPMetrics(reg, serviceName),
		Gatherer:    reg,
		CORS:        middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		ServiceName: serviceName,

		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ok = true
	return a, nil
}

// catalogRepository builds the configured catalog source. The postgres source
// migrates and seeds the schema on startup.
func (a *App) catalogRepository(ctx context.Context, reg prometheus.Registerer, h *health.Handler) (repository.CatalogRepository, error) {
	if a.cfg.CatalogSource != config.CatalogSourcePostgres {
		repo, err := memory.NewCatalogRepository()
		if err != nil {
			return nil, fmt.Errorf("load embedded catalog: %w", err)
		}
		a.logger.Info("using embedded catalog")
		return repo, nil
	}

	pgCfg := database.DefaultPostgresConfig(a.cfg.DatabaseURL)
	pgCfg.MaxConns = a.cfg.DBMaxConns
	pgCfg.MinConns = a.cfg.DBMinConns
	pgCfg.MaxConnLifetime = time.Duration(a.cfg.DBMaxConnLifetimeMins) * time.Minute
	pgCfg.MaxConnIdleTime = time.Duration(a.cfg.DBMaxConnIdleTimeMins) * time.Minute

	pool, err := database.NewPostgresPool(ctx, pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL")

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	reg.MustRegister(database.NewPoolStatsCollector(pool, serviceName))
	h.RegisterCritical("postgres", pool.Ping)

	return postgres.NewCatalogRepository(pool, &database.QueryTracer{
		SlowThreshold: a.cfg.SlowQueryThreshold(),
		Logger:        a.logger,
	}), nil
}

// paymentProvider builds the configured payment collaborator.
func (a *App) paymentProvider(reg prometheus.Registerer) (payment.Provider, error) {
	switch a.cfg.PaymentProvider {
	case config.PaymentProviderHosted:
		httpCfg := httpclient.DefaultConfig()
		httpCfg.Timeout = a.cfg.PaymentTimeout()

		cbCfg := httpclient.DefaultCircuitBreakerConfig("payment-provider")
		cbCfg.MaxRequests = a.cfg.CBMaxRequests
		cbCfg.Interval = time.Duration(a.cfg.CBInterval) * time.Second
		cbCfg.Timeout = time.Duration(a.cfg.CBTimeout) * time.Second
		cbCfg.FailureRatio = a.cfg.CBFailureRatio
		cbCfg.MinRequests = a.cfg.CBMinRequests

		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			cbCfg,
			httpclient.NewBreakerMetrics(reg),
			a.logger,
		).WithFallback(hosted.CircuitOpenFallback)

		a.logger.Info("using hosted payment provider", slog.String("url", a.cfg.PaymentProviderURL))
		return hosted.New(client, a.cfg.PaymentProviderURL, a.cfg.PaymentAPIKey, a.logger), nil
	case config.PaymentProviderMock:
		a.logger.Warn("using mock payment provider, no real payments are taken")
		return mockpayment.New(200*time.Millisecond, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", a.cfg.PaymentProvider)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases everything NewApp opened. Nil members are skipped
// so it is safe after a partial start.
func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.tracerShutdown = nil
	}
}
