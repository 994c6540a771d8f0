package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vfgl/storefront/internal/storage"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store implements storage.KV in process memory. Used in tests and as a
// fallback when no Redis is configured.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore creates an empty in-memory KV store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Get returns the value stored under key, or storage.ErrNotFound when the
// key is absent or expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, storage.ErrNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, storage.ErrNotFound
	}

	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value under key with the given TTL (zero means no expiry).
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	e := entry{value: v}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete removes the key. Absent keys are ignored.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
