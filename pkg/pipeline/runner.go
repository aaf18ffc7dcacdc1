package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/layout"
)

// Runner lays out graphs through a cache.
//
// The Runner holds no per-run state, so one Runner may serve several
// goroutines as long as each passes its own graph.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means the default keyer, a nil
// cache disables caching and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Layout lays out g in place. On a cache hit the cached coordinates are
// copied onto g and the layout engine does not run. Cache failures are
// logged and never fail the run.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	logger := opts.logger(r.Logger)
	res := &Result{}
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()

	start := time.Now()
	if g.NonFinite() {
		// NaN and null share one JSON spelling, so the hash would conflate them
		logger.Debug("graph not cacheable", "reason", "non-finite attribute")
		if err := layout.LayoutContext(ctx, g, opts.Layout); err != nil {
			return nil, err
		}
		res.Stats.LayoutTime = time.Since(start)
		return res, nil
	}
	input, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, err
	}
	res.GraphHash = cache.Hash(input)
	key := r.Keyer.LayoutKey(res.GraphHash, opts.KeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("cache lookup failed", "err", err)
		case hit:
			if cached, err := graph.ReadGraph(bytes.NewReader(data)); err == nil && applyResults(g, cached) {
				res.CacheHit = true
				res.Stats.LayoutTime = time.Since(start)
				logger.Debug("layout cache hit", "hash", res.GraphHash[:12])
				return res, nil
			}
			logger.Debug("discarding unusable cache entry", "hash", res.GraphHash[:12])
		}
	}

	if err := layout.LayoutContext(ctx, g, opts.Layout); err != nil {
		return nil, err
	}
	res.Stats.LayoutTime = time.Since(start)

	if data, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			logger.Warn("cache store failed", "err", err)
		}
	}
	return res, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
