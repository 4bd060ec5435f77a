package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Path == "" {
		t.Fatal("expected resolved path for available binary")
	}

	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for unset command: %#v", results[2])
	}
}

func TestResolveToolPrefersConfigured(t *testing.T) {
	got := resolveTool("ffmpeg", "/opt/ffmpeg/bin/ffmpeg", t.TempDir())
	if got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("configured command lost: %q", got)
	}
}

func TestResolveToolFindsBundledBinary(t *testing.T) {
	anchor := t.TempDir()
	bundled := filepath.Join(anchor, platformBinary("ffmpeg"))
	writeStub(t, bundled)

	if got := resolveTool("ffmpeg", "", anchor); got != bundled {
		t.Fatalf("expected bundled binary %q, got %q", bundled, got)
	}
	if got := resolveTool("ffmpeg", "ffmpeg", anchor); got != bundled {
		t.Fatalf("default name should still prefer bundled binary, got %q", got)
	}
}

func TestResolveToolFallsBackToBareName(t *testing.T) {
	if got := resolveTool("ffprobe", "", t.TempDir()); got != "ffprobe" {
		t.Fatalf("expected bare name fallback, got %q", got)
	}
}

func TestResolveToolIgnoresNonExecutable(t *testing.T) {
	anchor := t.TempDir()
	plain := filepath.Join(anchor, platformBinary("ffmpeg"))
	if err := os.WriteFile(plain, []byte("not a binary"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if got := resolveTool("ffmpeg", "", anchor); got != "ffmpeg" {
		t.Fatalf("non-executable candidate should be skipped, got %q", got)
	}
}
