package ffprobe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultTTL = 5 * time.Minute

// Cache memoizes Inspect results for unchanged files.
//
// Keys combine the absolute path with the file's size and modification
// time, so edits invalidate cached entries even inside the TTL window.
type Cache struct {
	binary string
	ttl    time.Duration
	store  *gocache.Cache

	probe func(ctx context.Context, binary, path string) (Result, error)
}

// NewCache builds a probe cache around the given ffprobe binary.
// Entries expire after ttl; expired entries are swept at twice the TTL.
func NewCache(binary string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		binary: binary,
		ttl:    ttl,
		store:  gocache.New(ttl, 2*ttl),
		probe:  Inspect,
	}
}

// Inspect returns the cached result for path when the file is
// unchanged, probing it otherwise.
func (c *Cache) Inspect(ctx context.Context, path string) (Result, error) {
	key, err := c.key(path)
	if err != nil {
		return Result{}, err
	}
	if value, found := c.store.Get(key); found {
		if result, ok := value.(Result); ok {
			return result, nil
		}
	}
	result, err := c.probe(ctx, c.binary, path)
	if err != nil {
		return Result{}, err
	}
	c.store.Set(key, result, c.ttl)
	return result, nil
}

func (c *Cache) key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("probe cache key: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("probe cache key: %w", err)
	}
	return fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}
