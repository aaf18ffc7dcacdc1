package cache

import (
	"context"
	"time"

	"github.com/matzehuels/stratum/pkg/observability"
)

// Instrumented reports the traffic of a Cache to the global cache hooks.
type Instrumented struct {
	Cache
	backend string
}

// Instrument wraps c. backend labels the reported events ("file",
// "redis", ...).
func Instrument(c Cache, backend string) *Instrumented {
	return &Instrumented{Cache: c, backend: backend}
}

// Backend returns the label passed to Instrument.
func (c *Instrumented) Backend() string { return c.backend }

// Get implements [Cache].
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.backend)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.backend)
		}
	}
	return data, ok, err
}

// Set implements [Cache].
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.backend, len(data))
	}
	return err
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}

var (
	_ Cache   = (*Instrumented)(nil)
	_ Clearer = (*Instrumented)(nil)
)
