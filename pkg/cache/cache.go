// Package cache provides byte caching for rendered page artifacts.
//
// Rendering a page to HTML, or a diagram block to SVG, is pure in the page
// content, so artifacts are cached under content-hashed keys: any edit to a
// page produces a different key and stale entries simply age out. Backends:
//
//   - FileCache: JSON entries on disk, the CLI default
//   - RedisCache: shared cache for multi-instance server deployments
//   - NullCache: caching disabled
//
// Keys are built with the helpers in keys.go so every caller hashes the
// same canonical inputs.
package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Cache is the interface for artifact cache backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
