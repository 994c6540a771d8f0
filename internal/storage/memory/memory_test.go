package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfgl/storefront/internal/storage"
)

func TestStore_SetAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart:sess-1", []byte(`{"entries":[]}`), 0))

	got, err := s.Get(ctx, "cart:sess-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"entries":[]}`), got)
}

func TestStore_Get_Missing(t *testing.T) {
	s := NewStore()

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("abc"), 0))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestStore_TTLExpires(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "catalog:products", []byte(`[]`), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := s.Get(ctx, "catalog:products")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
