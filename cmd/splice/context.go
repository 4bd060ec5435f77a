package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"splice/internal/config"
	"splice/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string
	verboseFlag   *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	log        *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		verboseFlag:   verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger builds the shared CLI logger once. Flags override the config
// file; without a config file the format follows the terminal (console
// on a TTY, JSON otherwise) so piped logs stay machine-readable.
func (c *commandContext) logger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}

		level := cfg.Logging.Level
		if c.logLevelFlag != nil {
			if v := strings.TrimSpace(*c.logLevelFlag); v != "" {
				level = v
			}
		}

		format := cfg.Logging.Format
		if !c.configExists && !stderrIsTerminal() {
			format = "json"
		}
		if c.logFormatFlag != nil {
			if v := strings.TrimSpace(*c.logFormatFlag); v != "" {
				format = v
			}
		}

		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.New(logging.Options{
			Level:   level,
			Format:  format,
			Verbose: verbose,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.log = logger
	})
	return c.log, c.loggerErr
}

func stderrIsTerminal() bool {
	return terminalWriter(os.Stderr)
}

func terminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
