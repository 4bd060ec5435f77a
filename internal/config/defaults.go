package config

const (
	defaultWorkDir         = "~/.local/share/splice/work"
	defaultLogDir          = "~/.local/share/splice/logs"
	defaultManifestDir     = "~/.config/splice/pipelines"
	defaultRenderCachePath = "~/.cache/splice/render_cache.db"
	defaultRenderCacheDays = 30
	defaultProbeCacheTTL   = 300
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultRenderTimeout   = 3600
	defaultProbeTimeout    = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     defaultWorkDir,
			LogDir:      defaultLogDir,
			ManifestDir: defaultManifestDir,
		},
		Tools: Tools{
			FFmpeg:        defaultFFmpegBinary,
			FFprobe:       defaultFFprobeBinary,
			RenderTimeout: defaultRenderTimeout,
			ProbeTimeout:  defaultProbeTimeout,
		},
		RenderCache: RenderCache{
			Enabled:       true,
			Path:          defaultRenderCachePath,
			RetentionDays: defaultRenderCacheDays,
		},
		ProbeCache: ProbeCache{
			Enabled:    true,
			TTLSeconds: defaultProbeCacheTTL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
