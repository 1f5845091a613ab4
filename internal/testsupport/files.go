package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteClip creates a placeholder audio file under dir and returns its path.
// Decoding is faked in tests, so the content only needs to exist.
func WriteClip(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte{0x42}, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
