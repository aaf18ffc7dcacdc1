package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var (
		opts       cacheOptions
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.runContext(cmd.Context())
			var cfg *config.Config
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}

			store, err := newCache(ctx, opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache backend cannot be cleared")
				return nil
			}
			n, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached layouts", n)
			if opts.merge(cfg).redisURL != "" {
				printDetail("Redis: %s", opts.merge(cfg).redisURL)
			} else if fc, ok := store.(*cache.Instrumented); ok {
				if f, ok := fc.Cache.(*cache.FileCache); ok {
					printDetail("Directory: %s", f.Dir())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "clear a Redis cache instead of the local one")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "layout defaults file naming the cache")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
