package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"splice"
	"splice/internal/config"
	"splice/internal/manifest"
)

// resolveManifestPath turns a command-line manifest argument into a file
// path. Existing paths win; bare names fall back to the configured
// manifest directory, with or without the .toml extension.
func resolveManifestPath(cfg *config.Config, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("manifest path is required")
	}

	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}

	candidates := []string{expanded}
	if filepath.Ext(expanded) == "" {
		candidates = append(candidates, expanded+".toml")
	}
	if cfg != nil && !strings.ContainsRune(arg, os.PathSeparator) {
		if dir := strings.TrimSpace(cfg.Paths.ManifestDir); dir != "" {
			candidates = append(candidates, filepath.Join(dir, arg))
			if filepath.Ext(arg) == "" {
				candidates = append(candidates, filepath.Join(dir, arg+".toml"))
			}
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("manifest %q not found (tried %s)", arg, strings.Join(candidates, ", "))
}

// loadPipeline loads a manifest, builds its graph, and resolves it.
func (c *commandContext) loadPipeline(arg string) (*manifest.Manifest, *splice.Resolution, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	path, err := resolveManifestPath(cfg, arg)
	if err != nil {
		return nil, nil, err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	terminals, err := m.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", filepath.Base(path), err)
	}
	resolution, err := splice.Resolve(terminals...)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", filepath.Base(path), err)
	}
	return m, resolution, nil
}

// shellJoin renders an argument vector as a single copy-pasteable shell
// line, quoting only tokens the shell would otherwise split or expand.
func shellJoin(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$&|;<>()*?[]#~`!{}") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
