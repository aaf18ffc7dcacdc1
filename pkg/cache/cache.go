// Package cache stores finished layouts keyed by the content of the input
// graph and the options that shaped it.
//
// Three backends are provided:
//
//   - [FileCache] keeps entries as JSON files under a directory (CLI default)
//   - [RedisCache] shares entries between machines through Redis
//   - [NullCache] stores nothing, used when caching is disabled
//
// Wrap any backend with [Instrument] to report hits, misses and writes to
// the global [observability.CacheHooks].
//
// Keys come from a [Keyer]. The default keyer hashes the serialized graph
// together with the layout options with SHA-256, so a changed attribute
// anywhere in the input produces a new key.
package cache

import (
	"context"
	"time"
)

// TTLLayout is how long a laid-out graph stays cached.
const TTLLayout = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a
	// miss (ok false) and not an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// LayoutKeyOpts are the parts of a layout call that change its result
// but are not stored in the graph itself.
type LayoutKeyOpts struct {
	Orderer string `json:"orderer,omitempty"`
	Config  string `json:"config,omitempty"` // hash of the defaults file, if any
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
