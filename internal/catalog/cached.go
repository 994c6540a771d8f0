package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vfgl/storefront/internal/domain"
	"github.com/vfgl/storefront/internal/storage"
)

const (
	keyProducts       = "catalog:products"
	keyProductPrefix  = "catalog:product:"
	keyCategories     = "catalog:categories"
	keyCategoryPrefix = "catalog:category:"
)

// Cached is a read-through TTL cache over a catalog Client. Snapshots are
// JSON values in the KV store; staleness inside the freshness window is by
// design, not a defect. Cache failures degrade to the inner client, never to
// an error.
type Cached struct {
	inner       Client
	store       storage.KV
	productTTL  time.Duration
	categoryTTL time.Duration
	logger      *slog.Logger
}

// NewCached wraps a catalog client with KV-backed caching. Product data uses
// productTTL (on the order of an hour), category data categoryTTL (a day).
func NewCached(inner Client, store storage.KV, productTTL, categoryTTL time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		inner:       inner,
		store:       store,
		productTTL:  productTTL,
		categoryTTL: categoryTTL,
		logger:      logger,
	}
}

// GetProducts returns the cached product list, refreshing it from the inner
// client when absent or expired.
func (c *Cached) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if c.lookup(ctx, keyProducts, &products) {
		return products, nil
	}

	products, err := c.inner.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	c.put(ctx, keyProducts, products, c.productTTL)
	return products, nil
}

// GetProductByID returns one product, cached per ID. Absence (ErrNotFound)
// is not cached; a deleted product becomes visible again on the next lookup.
func (c *Cached) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	key := keyProductPrefix + id

	var product domain.Product
	if c.lookup(ctx, key, &product) {
		return &product, nil
	}

	fresh, err := c.inner.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, fresh, c.productTTL)
	return fresh, nil
}

// GetCategories returns the cached category list.
func (c *Cached) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if c.lookup(ctx, keyCategories, &categories) {
		return categories, nil
	}

	categories, err := c.inner.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	c.put(ctx, keyCategories, categories, c.categoryTTL)
	return categories, nil
}

// GetProductsByCategory returns the cached product list for one category.
// Product data, so it ages on the product window, not the category window.
func (c *Cached) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	key := keyCategoryPrefix + category

	var products []domain.Product
	if c.lookup(ctx, key, &products) {
		return products, nil
	}

	products, err := c.inner.GetProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, products, c.productTTL)
	return products, nil
}

// lookup reports whether key held a decodable snapshot. Corrupt entries are
// dropped and treated as misses.
func (c *Cached) lookup(ctx context.Context, key string, out any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if err != storage.ErrNotFound {
			c.logger.Warn("catalog cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("corrupt catalog cache entry, dropping",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		_ = c.store.Delete(ctx, key)
		return false
	}
	return true
}

// put stores a snapshot best-effort; a failed write only costs a future miss.
func (c *Cached) put(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("marshal catalog cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
