package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/vfgl/storefront/pkg/config"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// External commerce API
	CommerceAPIURL string `env:"COMMERCE_API_URL" envDefault:"http://localhost:8000"`

	// Redis (durable mirror for carts, identities, catalog cache)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog freshness windows in seconds (1 hour / 24 hours)
	ProductCacheTTL  int `env:"PRODUCT_CACHE_TTL_SECONDS" envDefault:"3600"`
	CategoryCacheTTL int `env:"CATEGORY_CACHE_TTL_SECONDS" envDefault:"86400"`

	// Concurrent catalog lookups during cart hydration
	HydrationConcurrency int `env:"HYDRATION_CONCURRENCY" envDefault:"8"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// pprof access
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
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
	if c.CommerceAPIURL == "" {
		return fmt.Errorf("commerce API URL must not be empty")
	}
	if c.HydrationConcurrency < 1 {
		return fmt.Errorf("hydration concurrency must be at least 1, got %d", c.HydrationConcurrency)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("trace sample rate must be in [0,1], got %f", c.TraceSampleRate)
	}
	return nil
}

// ProductTTL returns the product freshness window as a duration.
func (c *Config) ProductTTL() time.Duration {
	return time.Duration(c.ProductCacheTTL) * time.Second
}

// CategoryTTL returns the category freshness window as a duration.
func (c *Config) CategoryTTL() time.Duration {
	return time.Duration(c.CategoryCacheTTL) * time.Second
}
