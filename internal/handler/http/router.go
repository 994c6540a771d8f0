package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vfgl/storefront/pkg/health"
	"github.com/vfgl/storefront/pkg/middleware"
)

// RouterConfig carries the routing-level knobs out of the app config.
type RouterConfig struct {
	Environment    string
	CORSOrigins    []string
	PprofCIDRs     []string
	ProductMaxAge  int // seconds, Cache-Control for product routes
	CategoryMaxAge int // seconds, Cache-Control for category routes
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	proxy *ProxyHandler,
	catalogHandler *CatalogHandler,
	cartHandler *CartHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSOrigins,
		ExposedHeaders: []string{"X-Correlation-ID"},
		Environment:    cfg.Environment,
	}))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	r.Route("/api", func(r chi.Router) {
		// Pass-through proxy routes. The {detail: ...} error shapes here are
		// contractual; these routes bypass the standard response envelope.
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/auth/login", proxy.Login)
			r.Post("/auth/register", proxy.Register)
			r.Post("/checkout", proxy.Checkout)
		})

		// Catalog routes, served through the TTL cache with matching
		// freshness hints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.ProductMaxAge))
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/categories/{name}/products", catalogHandler.ProductsByCategory)
			r.Get("/search", catalogHandler.SearchProducts)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CategoryMaxAge))
			r.Get("/categories", catalogHandler.ListCategories)
		})

		// Session cart routes.
		r.Route("/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionID)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)

			r.Post("/checkout", cartHandler.Checkout)
		})
	})

	return r
}
