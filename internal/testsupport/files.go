package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with content, making parent directories as needed,
// and returns path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteVideo writes a placeholder media file named filename under dir. The
// bytes are derived from filename so distinct videos never compare equal.
func WriteVideo(t testing.TB, dir, filename string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, filename), "fake-media:"+filename)
}
