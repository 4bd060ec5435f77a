package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRenderCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg must not be empty")
	}
	if c.Tools.FFprobe == "" {
		return errors.New("tools.ffprobe must not be empty")
	}
	if c.Tools.RenderTimeout <= 0 {
		return errors.New("tools.render_timeout must be positive")
	}
	if c.Tools.ProbeTimeout <= 0 {
		return errors.New("tools.probe_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateRenderCache() error {
	if !c.RenderCache.Enabled {
		return nil
	}
	if c.RenderCache.Path == "" {
		return errors.New("render_cache.path must be set when render_cache.enabled is true")
	}
	return nil
}
