package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"splice/internal/deps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and cache configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries([]deps.Requirement{
				{
					Name:        "FFmpeg",
					Command:     deps.ResolveFFmpeg(cfg.FFmpegBinary()),
					Description: "pipeline rendering",
				},
				{
					Name:        "FFprobe",
					Command:     deps.ResolveFFprobe(cfg.FFprobeBinary()),
					Description: "media inspection",
					Optional:    true,
				},
			})

			rows := make([][]string, 0, len(statuses))
			var missing []string
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						missing = append(missing, status.Name)
					}
				}
				notes := status.Description
				if status.Detail != "" {
					notes = status.Detail
				}
				if status.Optional {
					notes = strings.TrimSpace(notes + " (optional)")
				}
				rows = append(rows, []string{status.Name, state, status.Path, notes})
			}

			out := cmd.OutOrStdout()
			table := renderTable(
				[]string{"Tool", "Status", "Path", "Notes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(out, table)

			configNote := ctx.configPath
			if !ctx.configExists {
				configNote += " (not found, defaults in use)"
			}
			fmt.Fprintf(out, "Config:       %s\n", configNote)
			if cfg.RenderCache.Enabled {
				fmt.Fprintf(out, "Render cache: enabled (%s)\n", cfg.RenderCache.Path)
			} else {
				fmt.Fprintln(out, "Render cache: disabled")
			}
			if cfg.ProbeCache.Enabled {
				ttl := time.Duration(cfg.ProbeCache.TTLSeconds) * time.Second
				fmt.Fprintf(out, "Probe cache:  enabled (ttl %s)\n", ttl)
			} else {
				fmt.Fprintln(out, "Probe cache:  disabled")
			}

			if len(missing) > 0 {
				return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
