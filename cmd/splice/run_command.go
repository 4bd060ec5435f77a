package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"splice/internal/config"
	"splice/internal/deps"
	"splice/internal/ffmpeg"
	"splice/internal/ffprobe"
	"splice/internal/logging"
	"splice/internal/manifest"
	"splice/internal/rendercache"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Execute a manifest pipeline with ffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			m, resolution, err := ctx.loadPipeline(args[0])
			if err != nil {
				return err
			}
			argv, err := resolution.Args()
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			if m.Name != "" {
				runCtx = logging.WithPipeline(runCtx, m.Name)
			}
			digest := resolution.Digest()

			var store *rendercache.Store
			if !noCache {
				store, err = rendercache.Open(cfg, logger)
				if err != nil {
					logger.Warn("render cache unavailable", logging.Error(err))
				} else {
					defer store.Close()
				}
			}

			if store.Enabled() && !force {
				entry, err := store.Lookup(runCtx, digest.String())
				if err != nil {
					logger.Warn("render cache lookup failed", logging.Error(err))
				} else if entry != nil && outputsExist(m) {
					fmt.Fprintf(cmd.OutOrStdout(),
						"Outputs up to date (digest %s, %d prior runs); use --force to re-render\n",
						digest.Short(), entry.RunCount)
					return nil
				}
			}

			inspectInputs(runCtx, cfg, logger, m)

			runner, err := ffmpeg.New(deps.ResolveFFmpeg(cfg.FFmpegBinary()),
				ffmpeg.WithTimeout(time.Duration(cfg.Tools.RenderTimeout)*time.Second),
				ffmpeg.WithLogger(logging.NewComponentLogger(logger, "ffmpeg")),
			)
			if err != nil {
				return err
			}

			result, err := runner.Render(runCtx, argv, progressPrinter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			if store.Enabled() {
				if err := store.Record(runCtx, rendercache.Entry{
					Digest:     digest.String(),
					OutputPath: primaryOutput(m),
					Args:       argv,
					Elapsed:    result.Elapsed,
				}); err != nil {
					logger.Warn("render cache record failed", logging.Error(err))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s in %s\n",
				outputSummary(m), result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-render even when cached outputs exist")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the render cache")
	return cmd
}

// inspectInputs probes each distinct input before the render so stream
// mismatches surface with context instead of an opaque ffmpeg failure.
// Inspection is advisory; failures log and the render proceeds.
func inspectInputs(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *manifest.Manifest) {
	binary := deps.ResolveFFprobe(cfg.FFprobeBinary())
	probeLog := logging.NewComponentLogger(logger, "ffprobe")
	timeout := time.Duration(cfg.Tools.ProbeTimeout) * time.Second

	var cache *ffprobe.Cache
	if cfg.ProbeCache.Enabled {
		cache = ffprobe.NewCache(binary, time.Duration(cfg.ProbeCache.TTLSeconds)*time.Second)
	}

	seen := make(map[string]struct{}, len(m.Inputs))
	for _, input := range m.Inputs {
		if _, ok := seen[input.Path]; ok {
			continue
		}
		seen[input.Path] = struct{}{}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		var result ffprobe.Result
		var err error
		if cache != nil {
			result, err = cache.Inspect(probeCtx, input.Path)
		} else {
			result, err = ffprobe.Inspect(probeCtx, binary, input.Path)
		}
		cancel()
		if err != nil {
			probeLog.Warn("input inspection failed",
				logging.String("path", input.Path),
				logging.Error(err))
			continue
		}
		probeLog.Info("input inspected",
			logging.String("path", input.Path),
			logging.Int("video_streams", result.VideoStreamCount()),
			logging.Int("audio_streams", result.AudioStreamCount()),
			logging.Float64("duration_s", result.DurationSeconds()))
	}
}

// progressPrinter renders a single refreshing status line, but only when
// stderr is an interactive terminal; piped output gets log records alone.
func progressPrinter(w io.Writer) func(ffmpeg.ProgressUpdate) {
	if !terminalWriter(w) {
		return nil
	}
	return func(update ffmpeg.ProgressUpdate) {
		line := fmt.Sprintf("\rframe=%-8d time=%-14s speed=%.2fx",
			update.Frame, update.OutTime.Round(time.Millisecond), update.Speed)
		if update.Done {
			fmt.Fprintln(w, line)
			return
		}
		fmt.Fprint(w, line)
	}
}

func outputsExist(m *manifest.Manifest) bool {
	for _, output := range m.Outputs {
		info, err := os.Stat(output.Path)
		if err != nil || info.IsDir() {
			return false
		}
	}
	return len(m.Outputs) > 0
}

func outputSummary(m *manifest.Manifest) string {
	if len(m.Outputs) == 0 {
		return "(no outputs)"
	}
	if len(m.Outputs) == 1 {
		return m.Outputs[0].Path
	}
	return fmt.Sprintf("%s (+%d more)", m.Outputs[0].Path, len(m.Outputs)-1)
}
