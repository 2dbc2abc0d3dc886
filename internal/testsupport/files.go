package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with size placeholder bytes, creating parent
// directories. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	WriteText(t, path, string(bytes.Repeat([]byte{0x5c}, max(size, 1))))
}

// WriteTree creates every slash-separated relative path under root as a
// small placeholder file, mirroring a downloaded imaging tree.
func WriteTree(t testing.TB, root string, relPaths ...string) {
	t.Helper()
	for _, rel := range relPaths {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), 16)
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
