// Package cli implements the stratum command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/buildinfo"
	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "stratum"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stratum lays out directed graphs in layers",
		Long: `Stratum computes layered (Sugiyama-style) drawings of directed graphs.

It reads graphs as JSON, assigns every node a position, routes every edge
as a polyline and writes the graph back with the results attached.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// runContext attaches a logger tagged with a fresh run id to ctx.
func (c *CLI) runContext(ctx context.Context) context.Context {
	id := uuid.NewString()
	return withLogger(ctx, c.Logger.With("run", id[:8]))
}

// cacheOptions selects a cache backend. Flags win over the config file.
type cacheOptions struct {
	disabled bool
	redisURL string
}

func (o cacheOptions) merge(cfg *config.Config) cacheOptions {
	if cfg == nil {
		return o
	}
	if cfg.Cache.Disabled {
		o.disabled = true
	}
	if o.redisURL == "" {
		o.redisURL = cfg.Cache.RedisURL
	}
	return o
}

// newCache opens the configured backend, wrapped for metrics. A file
// cache that cannot be created disables caching instead of failing.
func newCache(ctx context.Context, o cacheOptions, cfg *config.Config) (cache.Cache, error) {
	o = o.merge(cfg)
	switch {
	case o.disabled:
		return cache.Instrument(cache.NewNullCache(), "null"), nil
	case o.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, o.redisURL, "")
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc, "redis"), nil
	}

	dir := ""
	if cfg != nil {
		dir = cfg.Cache.Dir
	}
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.Instrument(cache.NewNullCache(), "null"), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.Instrument(cache.NewNullCache(), "null"), nil
	}
	return cache.Instrument(fc, "file"), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/stratum/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
