package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteInputFile writes one name per line to the target path.
func WriteInputFile(t testing.TB, path string, names ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := strings.Join(names, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
