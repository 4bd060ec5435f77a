package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"splice/internal/rendercache"
)

const cacheStampLayout = "2006-01-02 15:04"

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the render cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

// openRenderCache opens the cache for maintenance commands. The warning
// string carries the reason when the cache cannot serve; only real
// failures surface as errors.
func openRenderCache(ctx *commandContext) (*rendercache.Store, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.RenderCache.Enabled {
		return nil, "Render cache is disabled (set render_cache.enabled = true in config.toml)", nil
	}
	logger, err := ctx.logger()
	if err != nil {
		return nil, "", err
	}
	store, err := rendercache.Open(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	if !store.Enabled() {
		store.Close()
		return nil, "Render cache is locked by another process", nil
	}
	return store, "", nil
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show render cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openRenderCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enabled: %s\n", yesNo(stats.Enabled))
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Runs:    %d\n", stats.TotalRuns)
			fmt.Fprintf(out, "Size:    %s\n", humanBytes(stats.SizeBytes))
			if !stats.Oldest.IsZero() {
				fmt.Fprintf(out, "Oldest:  %s\n", stats.Oldest.Local().Format(cacheStampLayout))
			}
			if !stats.Newest.IsZero() {
				fmt.Fprintf(out, "Newest:  %s\n", stats.Newest.Local().Format(cacheStampLayout))
			}
			fmt.Fprintf(out, "Path:    %s\n", stats.Path)
			return nil
		},
	}
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openRenderCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Render cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				elapsed := "-"
				if entry.Elapsed > 0 {
					elapsed = entry.Elapsed.Round(time.Millisecond).String()
				}
				lastUsed := "unknown"
				if !entry.LastUsedAt.IsZero() {
					lastUsed = entry.LastUsedAt.Local().Format(cacheStampLayout)
				}
				rows = append(rows, []string{
					shortDigest(entry.Digest),
					entry.OutputPath,
					strconv.FormatInt(entry.RunCount, 10),
					elapsed,
					lastUsed,
				})
			}
			table := renderTable(
				[]string{"Digest", "Output", "Runs", "Elapsed", "Last used"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openRenderCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Render cache is already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached renders unused for a retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := openRenderCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			window := olderThan
			if window <= 0 {
				cfg := ctx.configValue()
				window = time.Duration(cfg.RenderCache.RetentionDays) * 24 * time.Hour
			}

			pruned, err := store.Prune(cmd.Context(), window)
			if err != nil {
				return err
			}
			if pruned == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries older than %s\n", pruned, window)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Prune entries unused for this long (default: retention_days from config)")
	return cmd
}

func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
