package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/vfgl/storefront/pkg/errors"

	"github.com/vfgl/storefront/internal/domain"
	"github.com/vfgl/storefront/internal/storage"
)

const keyPrefix = "cart:"

// Store owns the canonical cart entry list for one session. In-memory state
// is the source of truth within a request; the KV is a write-through mirror
// updated synchronously on every mutation, so the two never diverge. One
// logical writer per instance; concurrent sessions writing the same key are
// last-write-wins at the storage layer (accepted limitation).
type Store struct {
	sessionID string
	kv        storage.KV
	cart      domain.Cart
	logger    *slog.Logger
}

// NewStore loads the session's cart from the KV. An absent or corrupt value
// initializes an empty cart rather than failing.
func NewStore(ctx context.Context, sessionID string, kv storage.KV, logger *slog.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		kv:        kv,
		logger:    logger,
	}

	data, err := kv.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.Warn("cart load failed, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.cart); err != nil {
		logger.Warn("corrupt cart data, starting empty",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		s.cart = domain.Cart{}
	}

	return s
}

// AddItem merges quantity into the existing entry for productID, or appends
// a new entry. No stock check happens here; stock validation is deferred to
// checkout.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return apperrors.InvalidInput("product_id must not be empty")
	}
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}

	if i := s.cart.FindIndex(productID); i >= 0 {
		s.cart.Entries[i].Quantity += quantity
	} else {
		s.cart.Entries = append(s.cart.Entries, domain.CartEntry{ProductID: productID, Quantity: quantity})
	}

	return s.persist(ctx)
}

// RemoveItem deletes the entry for productID; removing an absent entry is a
// no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	i := s.cart.FindIndex(productID)
	if i < 0 {
		return nil
	}

	s.cart.Entries = append(s.cart.Entries[:i], s.cart.Entries[i+1:]...)
	return s.persist(ctx)
}

// UpdateQuantity sets the entry's quantity to exactly newQuantity (replace,
// not add). A newQuantity of zero or less behaves as RemoveItem. Updating an
// absent entry is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, newQuantity int) error {
	if newQuantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	i := s.cart.FindIndex(productID)
	if i < 0 {
		return nil
	}

	s.cart.Entries[i].Quantity = newQuantity
	return s.persist(ctx)
}

// ItemCount returns the sum of all entry quantities.
func (s *Store) ItemCount() int {
	return s.cart.ItemCount()
}

// Clear empties the cart and removes its durable mirror.
func (s *Store) Clear(ctx context.Context) error {
	s.cart = domain.Cart{}
	if err := s.kv.Delete(ctx, keyPrefix+s.sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Entries returns a copy of the entry list in insertion order.
func (s *Store) Entries() []domain.CartEntry {
	out := make([]domain.CartEntry, len(s.cart.Entries))
	copy(out, s.cart.Entries)
	return out
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+s.sessionID, data, 0); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
