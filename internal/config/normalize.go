package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	if err := c.normalizeRenderCache(); err != nil {
		return err
	}
	c.normalizeProbeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestDir) == "" {
		c.Paths.ManifestDir = defaultManifestDir
	}
	if c.Paths.ManifestDir, err = expandPath(c.Paths.ManifestDir); err != nil {
		return fmt.Errorf("paths.manifest_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		if value, ok := os.LookupEnv("SPLICE_FFMPEG"); ok {
			c.Tools.FFmpeg = strings.TrimSpace(value)
		}
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		if value, ok := os.LookupEnv("SPLICE_FFPROBE"); ok {
			c.Tools.FFprobe = strings.TrimSpace(value)
		}
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	if c.Tools.RenderTimeout <= 0 {
		c.Tools.RenderTimeout = defaultRenderTimeout
	}
	if c.Tools.ProbeTimeout <= 0 {
		c.Tools.ProbeTimeout = defaultProbeTimeout
	}
	return nil
}

func (c *Config) normalizeRenderCache() error {
	if strings.TrimSpace(c.RenderCache.Path) == "" {
		c.RenderCache.Path = defaultRenderCachePath
	}
	var err error
	if c.RenderCache.Path, err = expandPath(c.RenderCache.Path); err != nil {
		return fmt.Errorf("render_cache.path: %w", err)
	}
	if c.RenderCache.RetentionDays <= 0 {
		c.RenderCache.RetentionDays = defaultRenderCacheDays
	}
	return nil
}

func (c *Config) normalizeProbeCache() {
	if c.ProbeCache.TTLSeconds <= 0 {
		c.ProbeCache.TTLSeconds = defaultProbeCacheTTL
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
