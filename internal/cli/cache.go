package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/cache"
	"github.com/matzehuels/blockscape/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.String(config.CacheBackend) == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}

			cc, _, err := c.newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache is empty")
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", describeCache(cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached ranges are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeCache(cfg))
			return nil
		},
	}
}

// describeCache names the configured cache location.
func describeCache(cfg *config.Config) string {
	switch cfg.String(config.CacheBackend) {
	case config.CacheRedis:
		return cfg.String(config.CacheRedisURL) + " (prefix " + cfg.String(config.CachePrefix) + ")"
	case config.CacheNone:
		return "none"
	default:
		return cfg.String(config.CacheDir)
	}
}
