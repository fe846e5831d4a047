// Package testutil provides filesystem fixtures for tests that run builds
// against a docs tree on disk.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Project is a temporary site root holding a config file, API
// descriptions and a docs tree.
type Project struct {
	t    *testing.T
	Root string
}

// NewProject creates an empty project in t.TempDir().
func NewProject(t *testing.T) *Project {
	t.Helper()
	return &Project{t: t, Root: t.TempDir()}
}

// Path joins a slash-separated relative path onto the project root.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// Write creates or replaces one file, creating parent directories.
func (p *Project) Write(rel, body string) *Project {
	p.t.Helper()
	path := p.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatalf("create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		p.t.Fatalf("write %s: %v", rel, err)
	}
	return p
}

// WriteAll writes every file of files, keyed by relative path.
func (p *Project) WriteAll(files map[string]string) *Project {
	p.t.Helper()
	for rel, body := range files {
		p.Write(rel, body)
	}
	return p
}

// AssertFileExists validates that a file exists.
func (p *Project) AssertFileExists(rel string) *Project {
	p.t.Helper()
	if _, err := os.Stat(p.Path(rel)); os.IsNotExist(err) {
		p.t.Errorf("Expected file to exist: %s", rel)
	}
	return p
}

// AssertFileNotExists validates that a file does not exist.
func (p *Project) AssertFileNotExists(rel string) *Project {
	p.t.Helper()
	if _, err := os.Stat(p.Path(rel)); err == nil {
		p.t.Errorf("Expected file to not exist: %s", rel)
	}
	return p
}

// AssertFileContains validates that a file contains expected content.
func (p *Project) AssertFileContains(rel, expected string) *Project {
	p.t.Helper()
	content, err := os.ReadFile(p.Path(rel))
	if err != nil {
		p.t.Errorf("Failed to read file %s: %v", rel, err)
		return p
	}
	if !strings.Contains(string(content), expected) {
		p.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", rel, expected, content)
	}
	return p
}
