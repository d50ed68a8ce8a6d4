package vcs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractLocale(t *testing.T) {
	tests := []struct {
		path   string
		locale string
		ok     bool
	}{
		{"app/src/main/res/values/strings.xml", "", true},
		{"app/src/main/res/values-es/strings.xml", "es", true},
		{"res/values-pt-rBR/strings.xml", "pt-rBR", true},
		{"values-de/arrays.xml", "de", true},
		{"values/strings.xml", "", true},
		{"res/myvalues/strings.xml", "", false},
		{"res/values-es/strings.txt", "", false},
		{"res/layout/main.xml", "", false},
		{"values-es/nested/strings.xml", "", false},
	}
	for _, tt := range tests {
		locale, ok := ExtractLocale(tt.path)
		if locale != tt.locale || ok != tt.ok {
			t.Errorf("ExtractLocale(%q) = (%q, %v), want (%q, %v)",
				tt.path, locale, ok, tt.locale, tt.ok)
		}
	}
}

func TestFindResourceFiles(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"app/res/values/strings.xml",
		"app/res/values-es/strings.xml",
		"app/res/layout/main.xml",
		".git/values/strings.xml",
		"README.md",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("<resources/>"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	found, err := FindResourceFiles(root)
	if err != nil {
		t.Fatalf("FindResourceFiles error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("found %d files, want 2: %v", len(found), found)
	}
	for _, f := range found {
		rel, _ := filepath.Rel(root, f)
		switch filepath.ToSlash(rel) {
		case "app/res/values/strings.xml", "app/res/values-es/strings.xml":
		default:
			t.Errorf("unexpected file found: %s", rel)
		}
	}
}

func TestGitClient_DeleteWorkingCopyIdempotent(t *testing.T) {
	c := NewGitClient()
	path := filepath.Join(t.TempDir(), "never-created")
	if err := c.DeleteWorkingCopy(path); err != nil {
		t.Errorf("DeleteWorkingCopy on a missing path: %v", err)
	}
}
