package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key holds no value. Callers treat it
// as absence, not as a failure.
var ErrNotFound = errors.New("storage: key not found")

// KV is the durable client-state mirror: a string-keyed byte store with
// optional per-key TTL. Cart entries, session identity, and catalog cache
// snapshots are all serialized JSON values under namespaced keys
// ("cart:<sid>", "identity:<sid>", "catalog:...").
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
