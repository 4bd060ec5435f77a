package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFmpeg reports the ffmpeg command splice will execute.
//
// An explicitly configured command always wins. For the default bare
// name, a binary sitting next to the splice executable is preferred
// over PATH lookup so bundled installs work without configuration.
func ResolveFFmpeg(configured string) string {
	return resolveTool("ffmpeg", configured, executableDir())
}

// ResolveFFprobe reports the ffprobe command splice will execute,
// following the same lookup order as ResolveFFmpeg.
func ResolveFFprobe(configured string) string {
	return resolveTool("ffprobe", configured, executableDir())
}

func resolveTool(name, configured, anchorDir string) string {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != name {
		return configured
	}
	if anchorDir != "" {
		candidate := filepath.Join(anchorDir, platformBinary(name))
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate
		}
	}
	return name
}

func executableDir() string {
	self, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(self)
}

func platformBinary(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
