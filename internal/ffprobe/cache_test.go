package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMedia(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write media stub: %v", err)
	}
	return path
}

func TestCacheReturnsCachedResult(t *testing.T) {
	path := writeMedia(t, t.TempDir(), "clip.mp4", "payload")

	calls := 0
	cache := NewCache("ffprobe", time.Minute)
	cache.probe = func(ctx context.Context, binary, p string) (Result, error) {
		calls++
		return Result{Format: Format{Filename: p, Duration: "5.0"}}, nil
	}

	for i := 0; i < 3; i++ {
		result, err := cache.Inspect(context.Background(), path)
		if err != nil {
			t.Fatalf("inspect %d: %v", i, err)
		}
		if result.DurationSeconds() != 5 {
			t.Fatalf("unexpected duration: %v", result.DurationSeconds())
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single probe, got %d", calls)
	}
}

func TestCacheInvalidatesOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeMedia(t, dir, "clip.mp4", "payload")

	calls := 0
	cache := NewCache("ffprobe", time.Minute)
	cache.probe = func(ctx context.Context, binary, p string) (Result, error) {
		calls++
		return Result{}, nil
	}

	if _, err := cache.Inspect(context.Background(), path); err != nil {
		t.Fatalf("first inspect: %v", err)
	}
	// A rewrite with a different mtime must look like a new file.
	if err := os.WriteFile(path, []byte("new payload"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, err := cache.Inspect(context.Background(), path); err != nil {
		t.Fatalf("second inspect: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected re-probe after change, got %d calls", calls)
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	path := writeMedia(t, t.TempDir(), "clip.mp4", "payload")

	calls := 0
	probeErr := errors.New("boom")
	cache := NewCache("ffprobe", time.Minute)
	cache.probe = func(ctx context.Context, binary, p string) (Result, error) {
		calls++
		return Result{}, probeErr
	}

	for i := 0; i < 2; i++ {
		if _, err := cache.Inspect(context.Background(), path); !errors.Is(err, probeErr) {
			t.Fatalf("inspect %d: expected probe error, got %v", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("errors must not be cached, got %d calls", calls)
	}
}

func TestCacheMissingFile(t *testing.T) {
	cache := NewCache("ffprobe", time.Minute)
	cache.probe = func(ctx context.Context, binary, p string) (Result, error) {
		t.Fatal("probe must not run for missing files")
		return Result{}, nil
	}
	if _, err := cache.Inspect(context.Background(), filepath.Join(t.TempDir(), "absent.mp4")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
