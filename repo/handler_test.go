package repo

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stringsync/stringsync/vcs"
)

// fakeClient is an in-memory transport: Clone materializes a fixed file set
// into the destination instead of talking to a remote.
type fakeClient struct {
	files    map[string]string // slash-relative path -> content
	cloneErr error
	clones   int
}

func (f *fakeClient) Clone(ctx context.Context, url, dest string) error {
	if f.cloneErr != nil {
		return f.cloneErr
	}
	f.clones++
	for rel, content := range f.files {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeClient) DeleteWorkingCopy(path string) error {
	return os.RemoveAll(path)
}

func (f *fakeClient) FindResourceFiles(root string) ([]string, error) {
	return vcs.FindResourceFiles(root)
}

func newTestHandler(t *testing.T, client vcs.Client) *Handler {
	t.Helper()
	h, err := New(t.TempDir(), "https://github.com/owner/app", client, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return h
}

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://github.com/owner/app", "github.com/owner/app"},
		{"https://github.com/owner/app.git", "github.com/owner/app"},
		{"https://github.com/owner/app/", "github.com/owner/app"},
		{"http://github.com/owner/app", "github.com/owner/app"},
		{"git@github.com:owner/app.git", "github.com/owner/app"},
		{"  https://github.com/owner/app  ", "github.com/owner/app"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestID_StableAcrossSpellings(t *testing.T) {
	base := ID("https://github.com/owner/app")
	for _, url := range []string{
		"https://github.com/owner/app.git",
		"git@github.com:owner/app.git",
		"https://github.com/owner/app/",
	} {
		if ID(url) != base {
			t.Errorf("ID(%q) = %q, want %q", url, ID(url), base)
		}
	}
	if ID("https://github.com/owner/other") == base {
		t.Error("different repositories must not collide")
	}
}

func TestNew_RejectsEmptyURL(t *testing.T) {
	if _, err := New(t.TempDir(), "   ", &fakeClient{}, nil); err == nil {
		t.Error("expected an error for an empty URL")
	}
}

func TestNew_PersistsGitURL(t *testing.T) {
	reposRoot := t.TempDir()
	h, err := New(reposRoot, "https://github.com/owner/app", &fakeClient{}, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	reopened, err := Open(reposRoot, filepath.Base(h.Root()), &fakeClient{}, nil)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if reopened.GitURL() != "https://github.com/owner/app" {
		t.Errorf("reopened gitUrl: got %q", reopened.GitURL())
	}
}

func TestOwnerRepo(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	if !h.IsGitHub() {
		t.Fatal("IsGitHub should be true for a github.com URL")
	}
	owner, repository, err := h.OwnerRepo()
	if err != nil {
		t.Fatalf("OwnerRepo error: %v", err)
	}
	if owner != "owner" || repository != "app" {
		t.Errorf("owner/repo: got %s/%s", owner, repository)
	}

	other, err := New(t.TempDir(), "https://gitlab.com/owner/app", &fakeClient{}, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if other.IsGitHub() {
		t.Error("IsGitHub should be false for a non-GitHub URL")
	}
	if _, _, err := other.OwnerRepo(); err == nil {
		t.Error("OwnerRepo should fail for a non-GitHub URL")
	}
}

// ---------------------------------------------------------------------------
// Locale lifecycle
// ---------------------------------------------------------------------------

func TestValidLocale(t *testing.T) {
	valid := []string{"es", "pt-BR", "zh-Hans", "en-GB", "ast"}
	for _, l := range valid {
		if !ValidLocale(l) {
			t.Errorf("ValidLocale(%q) = false, want true", l)
		}
	}
	invalid := []string{"", "default", "e", "es_ES", "es/../etc", "verylonglanguage"}
	for _, l := range invalid {
		if ValidLocale(l) {
			t.Errorf("ValidLocale(%q) = true, want false", l)
		}
	}
}

func TestCreateLocale(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})

	if err := h.CreateLocale("es"); err != nil {
		t.Fatalf("CreateLocale error: %v", err)
	}
	if !h.HasLocale("es") {
		t.Fatal("locale es not materialized")
	}

	// Creating again is a no-op, not an error.
	if err := h.CreateLocale("es"); err != nil {
		t.Errorf("second CreateLocale: %v", err)
	}

	if err := h.CreateLocale("default"); err == nil {
		t.Error("the default sentinel must be rejected as a locale")
	}
	if err := h.CreateLocale("no/pe"); err == nil {
		t.Error("invalid identifiers must be rejected")
	}
}

func TestDeleteLocale(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	if err := h.CreateLocale("es"); err != nil {
		t.Fatalf("CreateLocale error: %v", err)
	}
	if err := h.DeleteLocale("es"); err != nil {
		t.Fatalf("DeleteLocale error: %v", err)
	}
	if h.HasLocale("es") {
		t.Error("locale still present after delete")
	}
	// Idempotent.
	if err := h.DeleteLocale("es"); err != nil {
		t.Errorf("second DeleteLocale: %v", err)
	}
}

func TestLocales_SortedByDisplayName(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	for _, l := range []string{"fr", "es", "de"} {
		if err := h.CreateLocale(l); err != nil {
			t.Fatalf("CreateLocale(%s): %v", l, err)
		}
	}
	// Deutsch < Español < Français, regardless of code order.
	want := []string{"de", "es", "fr"}
	if got := h.Locales(); !reflect.DeepEqual(got, want) {
		t.Errorf("Locales() = %v, want %v", got, want)
	}
}

func TestDelete_RemovesRoot(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	if err := h.CreateLocale("es"); err != nil {
		t.Fatalf("CreateLocale error: %v", err)
	}
	if err := h.Delete(); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := os.Stat(h.Root()); !os.IsNotExist(err) {
		t.Error("repository root survived Delete")
	}
	if !h.IsEmpty() {
		t.Error("handle should report empty after Delete")
	}
}

// ---------------------------------------------------------------------------
// Editing and templates
// ---------------------------------------------------------------------------

func TestSetTranslation(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	if err := h.CreateLocale("es"); err != nil {
		t.Fatalf("CreateLocale error: %v", err)
	}

	if err := h.SetTranslation("es", "greeting", "Hola"); err != nil {
		t.Fatalf("SetTranslation error: %v", err)
	}
	st := h.LoadResources("es")
	if st.Content("greeting") != "Hola" {
		t.Errorf("content: got %q", st.Content("greeting"))
	}
	if !st.WasModified("greeting") {
		t.Error("a fresh edit must be flagged as modified")
	}
	if h.Settings().LastLocale() != "es" {
		t.Errorf("lastLocale: got %q", h.Settings().LastLocale())
	}

	if err := h.SetTranslation("fr", "greeting", "Bonjour"); err == nil {
		t.Error("editing a non-existent locale must fail")
	}
}

func TestMergeDefaultTemplate_NoBaseline(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	if err := h.CreateLocale("es"); err != nil {
		t.Fatalf("CreateLocale error: %v", err)
	}
	if _, err := h.MergeDefaultTemplate("es"); err == nil {
		t.Error("expected an error without a default baseline")
	}
}

func TestTemplateRemotePaths(t *testing.T) {
	h := newTestHandler(t, &fakeClient{})
	if err := h.Settings().AddRemotePath("strings.xml", "app/src/main/res/values/strings.xml"); err != nil {
		t.Fatalf("AddRemotePath error: %v", err)
	}

	paths := h.TemplateRemotePaths("es")
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1: %v", len(paths), paths)
	}
	for local, remote := range paths {
		if !strings.HasSuffix(local, filepath.Join("default", "strings.xml")) {
			t.Errorf("local path: got %q", local)
		}
		if remote != "app/src/main/res/values-es/strings.xml" {
			t.Errorf("remote path: got %q", remote)
		}
	}
}
