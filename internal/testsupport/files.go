package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with exactly size bytes of filler, making parent
// directories as needed. Sizes below one are bumped to a single byte so the
// result is never empty.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size < 1 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer out.Close()

	filler := bytes.Repeat([]byte("subburn filler\n."), 256)
	for written := int64(0); written < size; {
		n := int64(len(filler))
		if left := size - written; left < n {
			n = left
		}
		if _, err := out.Write(filler[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		written += n
	}
}
