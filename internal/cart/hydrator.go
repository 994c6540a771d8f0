package cart

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/vfgl/storefront/pkg/errors"

	"github.com/vfgl/storefront/internal/catalog"
	"github.com/vfgl/storefront/internal/domain"
)

// Hydrator resolves raw cart entries against the live catalog, producing
// priced, displayable line items. It is a pure projection: it holds no state
// between runs and never mutates the cart it reads from.
type Hydrator struct {
	catalog catalog.Client
	limit   int
	logger  *slog.Logger
}

// NewHydrator creates a hydrator that dispatches at most concurrency catalog
// lookups at a time.
func NewHydrator(c catalog.Client, concurrency int, logger *slog.Logger) *Hydrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Hydrator{
		catalog: c,
		limit:   concurrency,
		logger:  logger,
	}
}

// Hydrate resolves every entry concurrently and joins before returning;
// partial results are never streamed. Each entry is classified exactly once:
// resolved entries become valid line items in cart order, while not-found
// and transport failures both count as unresolved. Hydration itself never
// fails — a broken catalog yields a result where everything is unresolved.
// The stale entries stay in the cart for the user to notice or clear.
func (h *Hydrator) Hydrate(ctx context.Context, entries []domain.CartEntry) domain.HydrationResult {
	if len(entries) == 0 {
		return domain.HydrationResult{}
	}

	// One slot per entry, filled by product ID lookup; classification is
	// keyed by slot, not completion order.
	resolved := make([]*domain.Product, len(entries))

	var g errgroup.Group
	g.SetLimit(h.limit)

	for i, entry := range entries {
		g.Go(func() error {
			product, err := h.catalog.GetProductByID(ctx, entry.ProductID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					h.logger.Debug("stale cart entry",
						slog.String("product_id", entry.ProductID),
					)
				} else {
					h.logger.Warn("catalog lookup failed, treating entry as unresolved",
						slog.String("product_id", entry.ProductID),
						slog.String("error", err.Error()),
					)
				}
				return nil
			}
			resolved[i] = product
			return nil
		})
	}

	// Lookups never return errors; Wait is the join point.
	_ = g.Wait()

	result := domain.HydrationResult{
		Valid: make([]domain.HydratedLineItem, 0, len(entries)),
	}
	for i, entry := range entries {
		if resolved[i] == nil {
			result.UnresolvedCount++
			continue
		}
		result.Valid = append(result.Valid, domain.HydratedLineItem{
			Product:  *resolved[i],
			Quantity: entry.Quantity,
		})
	}

	return result
}
