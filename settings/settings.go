// Package settings stores the per-repository settings record.
//
// Each repository root carries a settings.json file:
//
//	{
//	    "gitUrl": "https://github.com/owner/app",
//	    "lastLocale": "es",
//	    "remotePaths": {"strings.xml": "app/res/values/strings.xml"}
//	}
//
// The record has no merge semantics: every setter persists synchronously
// and the last write wins.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the settings file name inside a repository root.
const FileName = "settings.json"

type record struct {
	GitURL      string            `json:"gitUrl"`
	LastLocale  string            `json:"lastLocale,omitempty"`
	RemotePaths map[string]string `json:"remotePaths,omitempty"`
}

// Settings is the settings record of one repository root.
type Settings struct {
	dir string
	rec record
}

// Load reads the settings record from dir. A missing file yields an empty
// record; a later setter creates it.
func Load(dir string) (*Settings, error) {
	s := &Settings{dir: dir}
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path(), err)
	}
	if err := json.Unmarshal(data, &s.rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path(), err)
	}
	return s, nil
}

func (s *Settings) path() string {
	return filepath.Join(s.dir, FileName)
}

// save persists the record synchronously.
func (s *Settings) save() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", s.dir, err)
	}
	data, err := json.MarshalIndent(&s.rec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path(), err)
	}
	return nil
}

// GitURL returns the stored upstream URL.
func (s *Settings) GitURL() string { return s.rec.GitURL }

// SetGitURL stores the upstream URL.
func (s *Settings) SetGitURL(url string) error {
	s.rec.GitURL = url
	return s.save()
}

// LastLocale returns the last locale the user worked on.
func (s *Settings) LastLocale() string { return s.rec.LastLocale }

// SetLastLocale stores the last locale the user worked on.
func (s *Settings) SetLastLocale(locale string) error {
	s.rec.LastLocale = locale
	return s.save()
}

// RemotePaths returns a copy of the filename -> upstream-relative-path table
// for the default baseline files.
func (s *Settings) RemotePaths() map[string]string {
	out := make(map[string]string, len(s.rec.RemotePaths))
	for k, v := range s.rec.RemotePaths {
		out[k] = v
	}
	return out
}

// AddRemotePath records the upstream path a default baseline file was
// cloned from.
func (s *Settings) AddRemotePath(filename, remotePath string) error {
	if s.rec.RemotePaths == nil {
		s.rec.RemotePaths = make(map[string]string)
	}
	s.rec.RemotePaths[filename] = remotePath
	return s.save()
}

// ClearRemotePaths drops the whole remote path table.
func (s *Settings) ClearRemotePaths() error {
	s.rec.RemotePaths = nil
	return s.save()
}
