package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	apperrors "github.com/vfgl/storefront/pkg/errors"
	"github.com/vfgl/storefront/pkg/httpclient"

	"github.com/vfgl/storefront/internal/domain"
)

// fallbackMessage is reported when an upstream failure carries no structured
// detail message.
const fallbackMessage = "Checkout failed"

// Submitter submits a checkout request to the commerce API exactly once.
type Submitter interface {
	SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error)
}

// CartClearer empties the session cart after a successful order.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// Assembler builds a checkout request from hydrated cart contents and an
// authenticated identity, submits it, and settles the cart afterwards.
// Re-entrant submission from the same session is the caller's problem; the
// assembler neither queues nor coalesces concurrent attempts.
type Assembler struct {
	commerce Submitter
	logger   *slog.Logger
}

// NewAssembler creates a checkout assembler.
func NewAssembler(commerce Submitter, logger *slog.Logger) *Assembler {
	return &Assembler{
		commerce: commerce,
		logger:   logger,
	}
}

// Checkout validates preconditions, submits the order, and clears the cart on
// success.
//
// No request is issued when identity is nil (ErrUnauthenticated) or when the
// hydrated valid set is empty (ErrNoValidItems — the cart is either empty or
// entirely stale). Entries that failed hydration are silently excluded from
// the submitted order; they never block checkout.
//
// A failed submission leaves the cart untouched and surfaces the first
// structured detail message from the upstream body, or the generic fallback
// when the body is absent or unparseable. Retrying after a failure submits a
// brand-new request; the commerce API issues no idempotency keys.
func (a *Assembler) Checkout(ctx context.Context, identity *domain.Identity, hydrated domain.HydrationResult, shippingAddress string, cart CartClearer) (*domain.CheckoutResponse, error) {
	if identity == nil {
		return nil, apperrors.Unauthenticated("sign in before checking out")
	}
	if len(hydrated.Valid) == 0 {
		return nil, apperrors.NoValidItems("no resolvable items in cart")
	}

	items := make([]domain.CheckoutItem, 0, len(hydrated.Valid))
	for _, line := range hydrated.Valid {
		items = append(items, domain.CheckoutItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	req := domain.CheckoutRequest{
		Items:           items,
		ShippingAddress: shippingAddress,
		Email:           identity.Email,
	}

	resp, err := a.commerce.SubmitCheckout(ctx, req)
	if err != nil {
		var upErr *httpclient.UpstreamError
		if errors.As(err, &upErr) {
			var apiErr domain.APIError
			_ = json.Unmarshal(upErr.Body, &apiErr)
			return nil, apperrors.Upstream(upErr.Status, apiErr.FirstMessage(fallbackMessage))
		}
		return nil, apperrors.Unavailable(fallbackMessage, err)
	}

	// The order is placed; a failed clear must not turn success into failure.
	if err := cart.Clear(ctx); err != nil {
		a.logger.Error("order placed but cart clear failed",
			slog.String("order_id", resp.OrderID),
			slog.String("error", err.Error()),
		)
	}

	a.logger.Info("checkout succeeded",
		slog.String("order_id", resp.OrderID),
		slog.Float64("total", resp.Total),
		slog.Int("items", len(items)),
	)

	return resp, nil
}
