package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteMediaFixture creates a stand-in media file of the requested size.
// The content is an arbitrary repeating pattern; only presence, size, and
// modification time matter to the code under test. A size <= 0 writes a
// single byte.
func WriteMediaFixture(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	const chunkSize = 32 * 1024
	chunk := bytes.Repeat([]byte{0x42}, chunkSize)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	for remaining := size; remaining > 0; remaining -= chunkSize {
		n := int64(chunkSize)
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(chunk[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}
