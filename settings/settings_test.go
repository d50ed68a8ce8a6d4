package settings

import (
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.GitURL() != "" || s.LastLocale() != "" {
		t.Errorf("missing file should yield an empty record: %q / %q", s.GitURL(), s.LastLocale())
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := s.SetGitURL("https://github.com/owner/app"); err != nil {
		t.Fatalf("SetGitURL error: %v", err)
	}
	if err := s.SetLastLocale("es"); err != nil {
		t.Fatalf("SetLastLocale error: %v", err)
	}

	s2, err := Load(dir)
	if err != nil {
		t.Fatalf("re-Load error: %v", err)
	}
	if s2.GitURL() != "https://github.com/owner/app" {
		t.Errorf("gitUrl: got %q", s2.GitURL())
	}
	if s2.LastLocale() != "es" {
		t.Errorf("lastLocale: got %q", s2.LastLocale())
	}
}

func TestRemotePaths(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := s.AddRemotePath("strings.xml", "app/res/values/strings.xml"); err != nil {
		t.Fatalf("AddRemotePath error: %v", err)
	}
	if err := s.AddRemotePath("arrays.xml", "app/res/values/arrays.xml"); err != nil {
		t.Fatalf("AddRemotePath error: %v", err)
	}

	s2, err := Load(dir)
	if err != nil {
		t.Fatalf("re-Load error: %v", err)
	}
	paths := s2.RemotePaths()
	if len(paths) != 2 || paths["strings.xml"] != "app/res/values/strings.xml" {
		t.Errorf("remotePaths: %v", paths)
	}

	// The accessor returns a copy; mutating it must not leak back.
	paths["strings.xml"] = "tampered"
	if s2.RemotePaths()["strings.xml"] == "tampered" {
		t.Error("RemotePaths leaked internal state")
	}

	if err := s2.ClearRemotePaths(); err != nil {
		t.Fatalf("ClearRemotePaths error: %v", err)
	}
	s3, err := Load(dir)
	if err != nil {
		t.Fatalf("re-Load error: %v", err)
	}
	if len(s3.RemotePaths()) != 0 {
		t.Errorf("remotePaths after clear: %v", s3.RemotePaths())
	}
}
