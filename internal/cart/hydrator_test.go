package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vfgl/storefront/pkg/errors"

	"github.com/vfgl/storefront/internal/domain"
	"github.com/vfgl/storefront/internal/storage/memory"
)

// --- Mock Catalog Client ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalog) GetCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalog) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

// ============================================================================
// Hydrate Tests
// ============================================================================

func TestHydrate_AllResolved(t *testing.T) {
	c := new(mockCatalog)
	c.On("GetProductByID", mock.Anything, "p1").Return(&domain.Product{ID: "p1", Name: "Widget", Price: 9.99}, nil)
	c.On("GetProductByID", mock.Anything, "p2").Return(&domain.Product{ID: "p2", Name: "Gadget", Price: 5.00}, nil)

	h := NewHydrator(c, 4, newTestLogger())
	result := h.Hydrate(context.Background(), []domain.CartEntry{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})

	require.Len(t, result.Valid, 2)
	assert.Equal(t, 0, result.UnresolvedCount)
	assert.Equal(t, "p1", result.Valid[0].Product.ID)
	assert.Equal(t, 2, result.Valid[0].Quantity)
}

func TestHydrate_StaleEntryCountedNotFatal(t *testing.T) {
	c := new(mockCatalog)
	c.On("GetProductByID", mock.Anything, "p1").Return(&domain.Product{ID: "p1", Name: "Widget", Price: 9.99}, nil)
	c.On("GetProductByID", mock.Anything, "p9").Return(nil, apperrors.NotFound("product", "p9"))

	h := NewHydrator(c, 4, newTestLogger())
	result := h.Hydrate(context.Background(), []domain.CartEntry{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p9", Quantity: 1},
	})

	require.Len(t, result.Valid, 1)
	assert.Equal(t, "p1", result.Valid[0].Product.ID)
	assert.Equal(t, 2, result.Valid[0].Quantity)
	assert.Equal(t, 1, result.UnresolvedCount)
}

func TestHydrate_TransportFailureTreatedAsUnresolved(t *testing.T) {
	c := new(mockCatalog)
	c.On("GetProductByID", mock.Anything, "p1").Return(nil, errors.New("connection refused"))
	c.On("GetProductByID", mock.Anything, "p2").Return(&domain.Product{ID: "p2", Name: "Gadget", Price: 5.00}, nil)

	h := NewHydrator(c, 4, newTestLogger())
	result := h.Hydrate(context.Background(), []domain.CartEntry{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	})

	// Hydration completes with partial results instead of aborting.
	require.Len(t, result.Valid, 1)
	assert.Equal(t, "p2", result.Valid[0].Product.ID)
	assert.Equal(t, 1, result.UnresolvedCount)
}

func TestHydrate_Totality(t *testing.T) {
	c := new(mockCatalog)
	c.On("GetProductByID", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	entries := make([]domain.CartEntry, 7)
	for i := range entries {
		entries[i] = domain.CartEntry{ProductID: fmt.Sprintf("p%d", i), Quantity: 1}
	}

	h := NewHydrator(c, 3, newTestLogger())
	result := h.Hydrate(context.Background(), entries)

	// Every entry is classified exactly once.
	assert.Equal(t, len(entries), len(result.Valid)+result.UnresolvedCount)
}

func TestHydrate_ValidPreservesCartOrder(t *testing.T) {
	c := new(mockCatalog)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("p%d", i)
		c.On("GetProductByID", mock.Anything, id).Return(&domain.Product{ID: id}, nil)
	}

	entries := make([]domain.CartEntry, 10)
	for i := range entries {
		entries[i] = domain.CartEntry{ProductID: fmt.Sprintf("p%d", i), Quantity: 1}
	}

	h := NewHydrator(c, 4, newTestLogger())
	result := h.Hydrate(context.Background(), entries)

	require.Len(t, result.Valid, 10)
	for i, item := range result.Valid {
		assert.Equal(t, fmt.Sprintf("p%d", i), item.Product.ID)
	}
}

func TestHydrate_EmptyCart(t *testing.T) {
	c := new(mockCatalog)

	h := NewHydrator(c, 4, newTestLogger())
	result := h.Hydrate(context.Background(), nil)

	assert.Empty(t, result.Valid)
	assert.Equal(t, 0, result.UnresolvedCount)
	c.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
}

func TestHydrate_DoesNotMutateStore(t *testing.T) {
	kv := memory.NewStore()
	ctx := context.Background()

	s := NewStore(ctx, "sess-1", kv, newTestLogger())
	require.NoError(t, s.AddItem(ctx, "p1", 2))
	require.NoError(t, s.AddItem(ctx, "p9", 1))

	c := new(mockCatalog)
	c.On("GetProductByID", mock.Anything, "p1").Return(&domain.Product{ID: "p1"}, nil)
	c.On("GetProductByID", mock.Anything, "p9").Return(nil, apperrors.NotFound("product", "p9"))

	h := NewHydrator(c, 4, newTestLogger())
	result := h.Hydrate(ctx, s.Entries())

	assert.Equal(t, 1, result.UnresolvedCount)

	// The stale entry stays in the cart; hydration is non-destructive.
	assert.Equal(t, []domain.CartEntry{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p9", Quantity: 1},
	}, s.Entries())

	reloaded := NewStore(ctx, "sess-1", kv, newTestLogger())
	assert.Len(t, reloaded.Entries(), 2)
}
