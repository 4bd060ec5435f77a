package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"splice/internal/config"
	"splice/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
manifest_dir = %q

[tools]
ffmpeg = %q
ffprobe = %q

[render_cache]
enabled = %t
path = %q

[logging]
level = %q
`,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Paths.ManifestDir,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		cfg.RenderCache.Enabled,
		cfg.RenderCache.Path,
		cfg.Logging.Level,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeTestManifest(t *testing.T, dir, name, contents string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir manifest dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

const trimManifest = `
name = "trim"

[[inputs]]
id = "main"
path = "in.mp4"

[[filters]]
id = "cut"
name = "trim"
inputs = ["main"]

[filters.options]
start_frame = 10
end_frame = 20

[[filters]]
id = "reset"
name = "setpts"
inputs = ["cut"]
args = ["PTS-STARTPTS"]

[[outputs]]
input = "reset"
path = "out.mp4"
`

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
