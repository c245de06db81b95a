// Package testutil provides shared helpers for bookfinder tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv is a temporary directory that refuses paths escaping it.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates a sandbox removed when the test completes.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{
		t:       t,
		rootDir: t.TempDir(),
	}
}

// RootDir returns the root directory of the test environment.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path returns an absolute path inside the sandbox and fails the test when
// elem would leave it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	cleanPath := filepath.Clean(filepath.Join(e.rootDir, filepath.Join(elem...)))
	root := filepath.Clean(e.rootDir)
	if cleanPath != root && !strings.HasPrefix(cleanPath, root+string(filepath.Separator)) {
		e.t.Fatalf("path %q escapes test sandbox %q", cleanPath, e.rootDir)
	}
	return cleanPath
}

// WriteFileString writes content to path, creating parent directories.
func (e *TestEnv) WriteFileString(path, content string) {
	e.t.Helper()

	absPath := e.Path(path)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		e.t.Fatalf("failed to create directory for %q: %v", absPath, err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write file %q: %v", absPath, err)
	}
}

// ReadFileString reads path as a string.
func (e *TestEnv) ReadFileString(path string) string {
	e.t.Helper()

	content, err := os.ReadFile(e.Path(path))
	if err != nil {
		e.t.Fatalf("failed to read file %q: %v", path, err)
	}
	return string(content)
}

// FileExists reports whether path exists in the sandbox.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	_, err := os.Stat(e.Path(path))
	return err == nil
}

// Chdir switches the working directory into the sandbox until the test ends.
func (e *TestEnv) Chdir(path string) {
	e.t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(e.Path(path)); err != nil {
		e.t.Fatalf("failed to change directory: %v", err)
	}
	e.t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			e.t.Errorf("failed to restore directory to %q: %v", origDir, err)
		}
	})
}
