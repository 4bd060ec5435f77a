package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"splice/internal/config"
	"splice/internal/deps"
	"splice/internal/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>...",
		Short: "Inspect media files with ffprobe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			binary := deps.ResolveFFprobe(cfg.FFprobeBinary())
			timeout := time.Duration(cfg.Tools.ProbeTimeout) * time.Second

			var cache *ffprobe.Cache
			if cfg.ProbeCache.Enabled {
				cache = ffprobe.NewCache(binary, time.Duration(cfg.ProbeCache.TTLSeconds)*time.Second)
			}

			out := cmd.OutOrStdout()
			for i, arg := range args {
				path, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}

				probeCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
				var result ffprobe.Result
				if cache != nil {
					result, err = cache.Inspect(probeCtx, path)
				} else {
					result, err = ffprobe.Inspect(probeCtx, binary, path)
				}
				cancel()
				if err != nil {
					return err
				}

				if asJSON {
					if _, err := out.Write(result.RawJSON()); err != nil {
						return err
					}
					continue
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				printProbeResult(out, path, result)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw ffprobe JSON")
	return cmd
}

func printProbeResult(out io.Writer, path string, result ffprobe.Result) {
	format := strings.TrimSpace(result.Format.FormatName)
	if format == "" {
		format = "(unknown)"
	}
	fmt.Fprintf(out, "File:     %s\n", path)
	fmt.Fprintf(out, "Format:   %s\n", format)
	fmt.Fprintf(out, "Duration: %s  Size: %s  Bitrate: %s\n",
		formatSeconds(result.DurationSeconds()),
		humanBytes(result.SizeBytes()),
		humanBitrate(result.BitRate()))

	if len(result.Streams) == 0 {
		fmt.Fprintln(out, "No streams found")
		return
	}

	rows := make([][]string, 0, len(result.Streams))
	for _, stream := range result.Streams {
		rows = append(rows, []string{
			strconv.Itoa(stream.Index),
			stream.CodecType,
			stream.CodecName,
			streamDetails(stream),
			humanBitrate(parseBitRate(stream.BitRate)),
		})
	}
	table := renderTable(
		[]string{"#", "Type", "Codec", "Details", "Bitrate"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
	fmt.Fprintln(out, table)
}

func streamDetails(stream ffprobe.Stream) string {
	switch strings.ToLower(stream.CodecType) {
	case "video":
		parts := make([]string, 0, 3)
		if stream.Width > 0 && stream.Height > 0 {
			parts = append(parts, fmt.Sprintf("%dx%d", stream.Width, stream.Height))
		}
		if stream.PixelFormat != "" {
			parts = append(parts, stream.PixelFormat)
		}
		if fps := formatFrameRate(stream.FrameRate); fps != "" {
			parts = append(parts, fps+" fps")
		}
		return strings.Join(parts, " ")
	case "audio":
		parts := make([]string, 0, 3)
		if stream.SampleRate != "" {
			parts = append(parts, stream.SampleRate+" Hz")
		}
		if stream.ChannelLayout != "" {
			parts = append(parts, stream.ChannelLayout)
		}
		if stream.Channels > 0 {
			parts = append(parts, fmt.Sprintf("(%d ch)", stream.Channels))
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// formatFrameRate renders ffprobe's rational frame rate (such as
// 24000/1001) as a decimal. Unknown rates, which ffprobe reports as
// 0/0, render empty.
func formatFrameRate(rate string) string {
	rate = strings.TrimSpace(rate)
	if rate == "" || rate == "0/0" {
		return ""
	}
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		return rate
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return ""
	}
	value := n / d
	if value <= 0 || math.IsInf(value, 0) {
		return ""
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func parseBitRate(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func humanBitrate(bitsPerSecond int64) string {
	switch {
	case bitsPerSecond <= 0:
		return "n/a"
	case bitsPerSecond >= 1_000_000:
		return fmt.Sprintf("%.1f Mb/s", float64(bitsPerSecond)/1_000_000)
	case bitsPerSecond >= 1_000:
		return fmt.Sprintf("%.0f kb/s", float64(bitsPerSecond)/1_000)
	default:
		return fmt.Sprintf("%d b/s", bitsPerSecond)
	}
}

func formatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "unknown"
	}
	d := time.Duration(seconds * float64(time.Second))
	return d.Round(100 * time.Millisecond).String()
}
