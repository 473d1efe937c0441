// Package cache provides pluggable byte caches for fetched package
// indexes.
//
// Repository index files are large (tens of megabytes for a full Ubuntu
// component) and change rarely, so caching the decompressed text between
// invocations saves most of the runtime. Three backends are provided:
//
//   - FileCache: per-user on-disk cache for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque byte values under string keys with optional
// expiry. Implementations must treat a missing key as a miss, not an
// error.
type Cache interface {
	// Get retrieves a value. The second return value reports whether
	// the key was found and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live. A ttl of 0 means
	// the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash computes the SHA-256 hex digest of data. Backends use it to turn
// arbitrary keys (URLs, file paths) into safe identifiers.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
