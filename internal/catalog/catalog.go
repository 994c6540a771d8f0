package catalog

import (
	"context"
	"strings"

	"github.com/vfgl/storefront/internal/domain"
)

// Client resolves products and categories from the commerce catalog. All
// calls are read-only and idempotent; absence is reported through ErrNotFound
// on GetProductByID, never as a hard failure.
type Client interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// minSearchLen is the shortest query that triggers a search. Shorter queries
// return no results rather than an error.
const minSearchLen = 2

// Search filters the product list by case-insensitive substring match on the
// product name.
func Search(ctx context.Context, c Client, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLen {
		return nil, nil
	}

	products, err := c.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}
