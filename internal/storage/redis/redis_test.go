package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfgl/storefront/internal/storage"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client), mr
}

func TestStore_SetAndGet(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart:sess-1", []byte(`{"entries":[]}`), 0))

	got, err := s.Get(ctx, "cart:sess-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"entries":[]}`), got)
}

func TestStore_Get_Missing(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.Get(context.Background(), "cart:absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Set_TTLExpires(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "catalog:products", []byte(`[]`), time.Hour))

	mr.FastForward(2 * time.Hour)

	_, err := s.Get(ctx, "catalog:products")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "identity:sess-1", []byte(`{}`), 0))
	require.NoError(t, s.Delete(ctx, "identity:sess-1"))

	_, err := s.Get(ctx, "identity:sess-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Delete_Absent(t *testing.T) {
	s, _ := setupTestStore(t)
	assert.NoError(t, s.Delete(context.Background(), "never-set"))
}
