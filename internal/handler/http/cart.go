package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/vfgl/storefront/pkg/errors"
	"github.com/vfgl/storefront/pkg/httputil"
	"github.com/vfgl/storefront/pkg/validator"

	"github.com/vfgl/storefront/internal/auth"
	"github.com/vfgl/storefront/internal/cart"
	"github.com/vfgl/storefront/internal/checkout"
	"github.com/vfgl/storefront/internal/domain"
	"github.com/vfgl/storefront/internal/storage"
)

// CartHandler exposes the session cart over HTTP. Every request loads the
// session's stores fresh from the KV, mutates, and writes through — the KV
// is the source of truth between requests.
type CartHandler struct {
	kv        storage.KV
	hydrator  *cart.Hydrator
	assembler *checkout.Assembler
	logger    *slog.Logger
}

// NewCartHandler creates the session cart HTTP handler.
func NewCartHandler(kv storage.KV, hydrator *cart.Hydrator, assembler *checkout.Assembler, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		kv:        kv,
		hydrator:  hydrator,
		assembler: assembler,
		logger:    logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for setting an item's
// quantity. Zero removes the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CheckoutCartRequest is the JSON request body for checking out the session
// cart.
type CheckoutCartRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required"`
}

// --- Response DTOs ---

// CartView is the hydrated cart as returned to the client: raw entries plus
// the resolved line items, the count of stale references, and the subtotal.
type CartView struct {
	Entries         []domain.CartEntry        `json:"entries"`
	ItemCount       int                       `json:"item_count"`
	Items           []domain.HydratedLineItem `json:"items"`
	UnresolvedCount int                       `json:"unresolved_count"`
	Subtotal        float64                   `json:"subtotal"`
}

// --- Handlers ---

// GetCart handles GET /api/cart: the current entries hydrated against the
// live catalog. Stale references show up as a count, not as errors.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	h.writeCartView(w, r, store)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := store.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCartView(w, r, store)
}

// UpdateQuantity handles PUT /api/cart/items/{productID}. A quantity of
// zero behaves as removal; updating an absent product changes nothing.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := store.UpdateQuantity(r.Context(), productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCartView(w, r, store)
}

// RemoveItem handles DELETE /api/cart/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")

	if err := store.RemoveItem(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCartView(w, r, store)
}

// ClearCart handles DELETE /api/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// Checkout handles POST /api/cart/checkout: hydrate the cart, assemble a
// checkout request from the valid items, and submit it under the session's
// identity. 401 without identity, 400 with nothing valid to submit; an
// upstream rejection surfaces its first detail message under the upstream
// status, and the cart survives every failure.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid, ok := sessionIDFromContext(ctx)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("X-Session-ID header is required"), h.logger)
		return
	}

	var req CheckoutCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store := cart.NewStore(ctx, sid, h.kv, h.logger)
	identity := auth.NewStore(ctx, sid, h.kv, h.logger).Identity()
	hydrated := h.hydrator.Hydrate(ctx, store.Entries())

	resp, err := h.assembler.Checkout(ctx, identity, hydrated, req.ShippingAddress, store)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// --- Helpers ---

func (h *CartHandler) sessionStore(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("X-Session-ID header is required"), h.logger)
		return nil, false
	}
	return cart.NewStore(r.Context(), sid, h.kv, h.logger), true
}

func (h *CartHandler) writeCartView(w http.ResponseWriter, r *http.Request, store *cart.Store) {
	entries := store.Entries()
	hydrated := h.hydrator.Hydrate(r.Context(), entries)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CartView{
		Entries:         entries,
		ItemCount:       store.ItemCount(),
		Items:           hydrated.Valid,
		UnresolvedCount: hydrated.UnresolvedCount,
		Subtotal:        hydrated.Subtotal(),
	}})
}
