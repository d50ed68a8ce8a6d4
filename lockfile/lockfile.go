// Package lockfile implements stringsync.lock — a per-repository ledger of
// upstream content checksums plus a sync-in-progress guard.
//
// For every locale the ledger records the MD5 of each entry's last-synced
// upstream content. An edit is a real divergence only while it differs from
// that recorded content, so restoring the exact upstream value clears the
// entry's modified state. The guard half rejects a second sync starting
// while one is already running on the same handle, since both would share
// (and purge) the same scratch working copy. The guard is process-local and
// never written to disk: a crashed sync must not leave the repository
// permanently locked.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the lock file name inside a repository root.
const FileName = "stringsync.lock"

// Version is the lock file format version.
const Version = 1

// LockFile is the stringsync.lock structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // locale -> entry name -> md5

	mu      sync.Mutex
	syncing bool
	path    string
}

// Load reads the lock file from a repository root. A missing file yields an
// empty ledger.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, FileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}
	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.saveLocked()
}

func (lf *LockFile) saveLocked() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lf.path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(lf.path), err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Hash computes the MD5 hex digest of a content string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// ---------------------------------------------------------------------------
// Checksum ledger
// ---------------------------------------------------------------------------

// Matches reports whether content equals the recorded upstream content for
// (locale, name). Unknown entries never match.
func (lf *LockFile) Matches(locale, name, content string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	entries, ok := lf.Checksums[locale]
	if !ok {
		return false
	}
	h, ok := entries[name]
	return ok && h == Hash(content)
}

// Record stores the checksum of an entry's freshly fetched upstream content.
func (lf *LockFile) Record(locale, name, content string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.Checksums[locale] == nil {
		lf.Checksums[locale] = make(map[string]string)
	}
	lf.Checksums[locale][name] = Hash(content)
}

// DropLocale removes every checksum recorded for a locale.
func (lf *LockFile) DropLocale(locale string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, locale)
}

// ---------------------------------------------------------------------------
// Sync guard
// ---------------------------------------------------------------------------

// BeginSync marks the repository as syncing. It fails when a sync is
// already in progress on this handle.
func (lf *LockFile) BeginSync() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.syncing {
		return fmt.Errorf("a sync is already in progress for this repository")
	}
	lf.syncing = true
	return nil
}

// EndSync clears the syncing marker and persists the checksum ledger.
func (lf *LockFile) EndSync() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.syncing = false
	return lf.saveLocked()
}

// AbortSync clears the syncing marker without touching the ledger. Used
// after a failed pipeline has torn the repository root down; persisting
// there would re-create the root.
func (lf *LockFile) AbortSync() {
	lf.mu.Lock()
	lf.syncing = false
	lf.mu.Unlock()
}
