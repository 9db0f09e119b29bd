package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the inventory cache",
	}

	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheSizeCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	var target int64

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove the oldest cache entries until the cache fits a size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-bytes") {
				target = c.config.Cache.MaxBytes
			}
			if target < 0 {
				return fmt.Errorf("max-bytes must be >= 0, got %d", target)
			}
			dc, err := openCache(c.config)
			if err != nil {
				return err
			}
			freed, err := dc.Prune(target)
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			c.Logger.Info("pruned cache", "dir", dc.Dir(), "freed", freed, "remaining", dc.SizeBytes())
			fmt.Fprintf(c.out, "%s %s\n", styleSuccess.Render("freed"), formatBytes(freed))
			return nil
		},
	}
	cmd.Flags().Int64Var(&target, "max-bytes", 0, "target cache size in bytes (default: configured max, 0 empties the cache)")
	return cmd
}

// cacheSizeCommand creates the "cache size" subcommand.
func (c *CLI) cacheSizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the cache size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dc, err := openCache(c.config)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, formatBytes(dc.SizeBytes()))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.config.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}
