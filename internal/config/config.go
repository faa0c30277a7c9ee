package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/vedantkulkarni1234/website/pkg/config"
)

// Catalog sources.
const (
	CatalogSourceMemory   = "memory"
	CatalogSourcePostgres = "postgres"
)

// Payment providers.
const (
	PaymentProviderMock   = "mock"
	PaymentProviderHosted = "hosted"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Redis
	RedisURL  string `env:"REDIS_URL" envDefault:""`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart and checkout persistence
	CartNamespace     string `env:"CART_NAMESPACE" envDefault:"hexstrike-cart"`
	CheckoutNamespace string `env:"CHECKOUT_NAMESPACE" envDefault:"hexstrike-checkout"`
	CartTTL           int    `env:"CART_TTL_HOURS" envDefault:"168"`

	// Catalog
	CatalogSource   string `env:"CATALOG_SOURCE" envDefault:"memory"`
	CatalogMaxLimit int    `env:"CATALOG_MAX_LIMIT" envDefault:"50"`

	// PostgreSQL (CATALOG_SOURCE=postgres)
	DatabaseURL           string `env:"DATABASE_URL" envDefault:""`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Pricing
	PromoCode string          `env:"PROMO_CODE" envDefault:"HUNTER10"`
	PromoRate decimal.Decimal `env:"PROMO_RATE" envDefault:"0.10"`
	Currency  string          `env:"CURRENCY" envDefault:"usd"`

	// Payment
	PaymentProvider       string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	PaymentProviderURL    string `env:"PAYMENT_PROVIDER_URL" envDefault:""`
	PaymentAPIKey         string `env:"PAYMENT_API_KEY" envDefault:""`
	PaymentTimeoutSeconds int    `env:"PAYMENT_TIMEOUT_SECONDS" envDefault:"15"`
	CheckoutSuccessURL    string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:3000/checkout/success"`
	CheckoutCancelURL     string `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:3000/checkout"`

	// Circuit breaker settings for the hosted payment provider
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Rate limiting for checkout submission and the contact form. 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartNamespace == "" || c.CheckoutNamespace == "" {
		return fmt.Errorf("CART_NAMESPACE and CHECKOUT_NAMESPACE are required")
	}
	if c.CartNamespace == c.CheckoutNamespace {
		return fmt.Errorf("CART_NAMESPACE and CHECKOUT_NAMESPACE must differ")
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if c.CatalogMaxLimit < 1 {
		return fmt.Errorf("CATALOG_MAX_LIMIT must be positive, got %d", c.CatalogMaxLimit)
	}

	switch c.CatalogSource {
	case CatalogSourceMemory:
	case CatalogSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE=postgres")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q", c.CatalogSource)
	}

	if strings.TrimSpace(c.PromoCode) == "" {
		return fmt.Errorf("PROMO_CODE is required")
	}
	if c.PromoRate.IsNegative() || c.PromoRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("PROMO_RATE must be between 0 and 1, got %s", c.PromoRate)
	}
	if c.Currency == "" {
		return fmt.Errorf("CURRENCY is required")
	}

	if c.PaymentTimeoutSeconds < 1 {
		return fmt.Errorf("PAYMENT_TIMEOUT_SECONDS must be positive, got %d", c.PaymentTimeoutSeconds)
	}
	switch c.PaymentProvider {
	case PaymentProviderMock:
	case PaymentProviderHosted:
		if _, err := url.ParseRequestURI(c.PaymentProviderURL); err != nil {
			return fmt.Errorf("invalid PAYMENT_PROVIDER_URL %q: %w", c.PaymentProviderURL, err)
		}
		if c.PaymentAPIKey == "" {
			return fmt.Errorf("PAYMENT_API_KEY is required when PAYMENT_PROVIDER=hosted")
		}
	default:
		return fmt.Errorf("invalid PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	for name, rawURL := range map[string]string{
		"CHECKOUT_SUCCESS_URL": c.CheckoutSuccessURL,
		"CHECKOUT_CANCEL_URL":  c.CheckoutCancelURL,
	} {
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rawURL, err)
		}
	}

	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %f", c.CBFailureRatio)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// CartTTLDuration returns the ledger expiry.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// PaymentTimeout returns the per-submission deadline for the payment call.
func (c *Config) PaymentTimeout() time.Duration {
	return time.Duration(c.PaymentTimeoutSeconds) * time.Second
}

// SlowQueryThreshold returns the duration above which queries are logged.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
