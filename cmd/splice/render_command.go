package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"splice"
	"splice/internal/logging"
	"splice/internal/manifest"
	"splice/internal/rendercache"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Compile a manifest into its ffmpeg argument vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, resolution, err := ctx.loadPipeline(args[0])
			if err != nil {
				return err
			}
			argv, err := resolution.Args()
			if err != nil {
				return err
			}

			if !noCache {
				recordRender(cmd.Context(), ctx, m, resolution, argv)
			}

			if asJSON {
				return writeJSON(cmd, argv)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shellJoin(argv))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the argument vector as a JSON array")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the render cache")
	return cmd
}

// recordRender notes the compiled pipeline in the render cache. Cache
// trouble never fails the command; the compiled vector is the point.
func recordRender(ctx context.Context, cctx *commandContext, m *manifest.Manifest, resolution *splice.Resolution, argv []string) {
	logger, err := cctx.logger()
	if err != nil {
		return
	}
	store, err := rendercache.Open(cctx.configValue(), logger)
	if err != nil {
		logger.Warn("render cache unavailable", logging.Error(err))
		return
	}
	defer store.Close()
	if !store.Enabled() {
		return
	}

	digest := resolution.Digest()
	entry, err := store.Lookup(ctx, digest.String())
	if err != nil {
		logger.Warn("render cache lookup failed", logging.Error(err))
		return
	}
	if entry != nil {
		logger.Debug("render cache hit",
			logging.String("digest", digest.Short()),
			logging.Int64("runs", entry.RunCount))
		return
	}
	if err := store.Record(ctx, rendercache.Entry{
		Digest:     digest.String(),
		OutputPath: primaryOutput(m),
		Args:       argv,
	}); err != nil {
		logger.Warn("render cache record failed", logging.Error(err))
	}
}

func primaryOutput(m *manifest.Manifest) string {
	if m == nil || len(m.Outputs) == 0 {
		return ""
	}
	return m.Outputs[0].Path
}
