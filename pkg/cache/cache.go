// Package cache stores generated cities so that repeated runs with the same
// seed and options skip the subdivision entirely.
//
// A generation run is deterministic: the same parameters, generation limit,
// path policy and inset always produce the same snapshot. The [Keyer] turns
// those inputs into a stable key and a [Cache] backend holds the encoded
// snapshot.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// Keys have the form "city:<sha256>" and "artifact:<sha256>". Wrap a keyer in
// [NewScopedKeyer] to give a shared backend its own namespace.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLCity is how long a generated city snapshot is kept.
	TTLCity = 30 * 24 * time.Hour

	// TTLArtifact is how long a rendered export (JSON, DOT) is kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
