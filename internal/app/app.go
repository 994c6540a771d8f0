package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vfgl/storefront/pkg/health"
	"github.com/vfgl/storefront/pkg/httpclient"
	"github.com/vfgl/storefront/pkg/tracing"

	"github.com/vfgl/storefront/internal/cart"
	"github.com/vfgl/storefront/internal/catalog"
	"github.com/vfgl/storefront/internal/checkout"
	"github.com/vfgl/storefront/internal/commerce"
	"github.com/vfgl/storefront/internal/config"
	handler "github.com/vfgl/storefront/internal/handler/http"
	redisstore "github.com/vfgl/storefront/internal/storage/redis"
)

// App wires together all dependencies and runs the storefront server.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize Redis, the durable mirror for carts, identities and the
	// catalog cache.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize tracing.
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Commerce API clients: retried reads behind a circuit breaker,
	// single-attempt writes so an order is never submitted twice.
	reads := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("commerce-api"),
		logger,
	)
	writes := httpclient.New(httpclient.WriteConfig())
	commerceClient := commerce.NewClient(cfg.CommerceAPIURL, reads, writes, logger)

	// Build the dependency graph.
	kv := redisstore.NewStore(rdb)
	cachedCatalog := catalog.NewCached(commerceClient, kv, cfg.ProductTTL(), cfg.CategoryTTL(), logger)
	hydrator := cart.NewHydrator(cachedCatalog, cfg.HydrationConcurrency, logger)
	assembler := checkout.NewAssembler(commerceClient, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("commerce", commerceClient.Ping)

	// HTTP router.
	router := handler.NewRouter(
		handler.NewProxyHandler(commerceClient, kv, logger),
		handler.NewCatalogHandler(cachedCatalog, logger),
		handler.NewCartHandler(kv, hydrator, assembler, logger),
		healthHandler,
		logger,
		handler.RouterConfig{
			Environment:    cfg.Environment,
			CORSOrigins:    cfg.CORSAllowedOrigins,
			PprofCIDRs:     cfg.PprofAllowedCIDRs,
			ProductMaxAge:  cfg.ProductCacheTTL,
			CategoryMaxAge: cfg.CategoryCacheTTL,
		},
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
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

	// Flush buffered spans.
	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
