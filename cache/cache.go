package cache

import "github.com/opencontainers/go-digest"

// Cache stores encoded archive inventories keyed by the content digest of
// the archive they describe.
//
// Because keys are content digests, a hit is valid for any archive with
// the same bytes regardless of its name or location.
//
// Implementations should handle their own size limits and eviction policies.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value for key.
	// Returns nil, false if nothing is cached.
	Get(key digest.Digest) ([]byte, bool)

	// Put stores value under key. Storing an existing key is a no-op.
	Put(key digest.Digest, value []byte) error

	// Delete removes the value for key.
	// Implementations should treat missing entries as a no-op.
	Delete(key digest.Digest) error

	// MaxBytes returns the configured cache size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current cache size in bytes.
	SizeBytes() int64

	// Prune removes cached entries until the cache is at or below targetBytes.
	// Returns the number of bytes freed.
	Prune(targetBytes int64) (int64, error)
}
