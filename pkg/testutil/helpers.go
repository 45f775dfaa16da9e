package testutil

import (
	"path/filepath"
	"testing"

	"github.com/sandpress/sandpress/pkg/types"
)

// MustWriteFile writes a file through the FS port, creating parent
// directories, and fails the test on error.
func MustWriteFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// MustReadFile reads a file through the FS port and fails the test on
// error.
func MustReadFile(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}
