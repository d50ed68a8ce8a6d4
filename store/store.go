// Package store implements the on-disk resource store for one locale:
// an ordered set of resource entries with per-entry divergence tracking
// and a whole-store saved flag.
//
// The two flags answer different questions. An entry is "modified" when its
// in-memory content differs from the last value fetched from upstream for
// that name; that state survives save/load via a modified="true" attribute
// and is the unit of conflict resolution during sync. The store is "saved"
// when its on-disk content matches its in-memory content.
package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/stringsync/stringsync/android"
)

// Policy selects how fetched upstream entries reconcile with local ones.
type Policy int

const (
	// PolicyKeepLocal applies a fetched entry only when the local entry is
	// not modified; user edits survive the sync.
	PolicyKeepLocal Policy = iota
	// PolicyTakeUpstream applies every fetched entry unconditionally.
	PolicyTakeUpstream
)

// String returns the policy name used in flags and logs.
func (p Policy) String() string {
	if p == PolicyTakeUpstream {
		return "take-upstream"
	}
	return "keep-local"
}

// Store is one locale's resource set backed by a single file.
type Store struct {
	path  string
	doc   *android.Document
	saved bool
}

// Load reads the store at path. A missing or unparsable file degrades to an
// empty store: callers treat "no file" and "invalid file" identically as a
// recoverable empty state, so a corrupt upstream file reads as "no
// translations found" instead of aborting a sync.
func Load(path string) *Store {
	doc, err := android.ParseFile(path)
	if err != nil {
		return &Store{path: path, doc: android.NewDocument(), saved: false}
	}
	return &Store{path: path, doc: doc, saved: true}
}

// Path returns the store's backing file path.
func (s *Store) Path() string { return s.path }

// Document exposes the underlying document for template substitution and
// iteration. Entries are in insertion order.
func (s *Store) Document() *android.Document { return s.doc }

// Lookup returns the named entry. Implements android.ContentSource.
func (s *Store) Lookup(name string) (*android.Entry, bool) {
	return s.doc.Lookup(name)
}

// Entries returns all resource entries in insertion order.
func (s *Store) Entries() []*android.Entry {
	var out []*android.Entry
	for _, e := range s.doc.Entries {
		if !e.IsComment() {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether the store has an entry with the given name.
func (s *Store) Contains(name string) bool {
	_, ok := s.doc.Lookup(name)
	return ok
}

// Content returns the content of the named string entry, or "" when absent.
func (s *Store) Content(name string) string {
	e, ok := s.doc.Lookup(name)
	if !ok {
		return ""
	}
	return e.Value
}

// IsEmpty reports whether the store has no resource entries.
func (s *Store) IsEmpty() bool { return s.doc.IsEmpty() }

// IsSaved reports whether on-disk content matches in-memory content.
func (s *Store) IsSaved() bool { return s.saved }

// WasModified reports whether the named entry diverged from upstream.
func (s *Store) WasModified(name string) bool {
	e, ok := s.doc.Lookup(name)
	return ok && e.Modified
}

// AnyModified reports whether any entry diverged from upstream.
func (s *Store) AnyModified() bool {
	for _, e := range s.doc.Entries {
		if e.Modified {
			return true
		}
	}
	return false
}

// SetContent records a user edit to the named string entry, creating the
// entry when absent. The entry is marked modified and the store unsaved.
// Editing an array or plurals entry this way is rejected: a plain value has
// no slot in those kinds and would be dropped on serialization. Callers that
// know the entry's last-synced upstream content may clear the flag again via
// ClearModified when the edit restores that content.
func (s *Store) SetContent(name, value string) error {
	e, ok := s.doc.Lookup(name)
	if !ok {
		e = &android.Entry{Kind: android.KindString, Name: name, Translatable: true}
		s.doc.Add(e)
	}
	if e.Kind != android.KindString {
		return fmt.Errorf("entry %s is not a string resource", name)
	}
	if e.Value == value {
		return nil
	}
	e.Value = value
	e.Modified = true
	s.saved = false
	return nil
}

// ClearModified drops the divergence flag of the named entry.
func (s *Store) ClearModified(name string) {
	if e, ok := s.doc.Lookup(name); ok {
		e.Modified = false
	}
}

// Delete removes the named entry and marks the store unsaved.
func (s *Store) Delete(name string) {
	if s.doc.Remove(name) {
		s.saved = false
	}
}

// AddTag ingests an entry fetched from upstream, replacing any local entry
// with the same name. Ingestion never sets the modified flag: only direct
// user edits do.
func (s *Store) AddTag(e *android.Entry) {
	c := e.Clone()
	c.Modified = false
	s.doc.Add(c)
	s.saved = false
}

// Merge folds every entry of the fetched store into this one under the
// given policy. Under PolicyKeepLocal, entries the user has modified since
// the last sync are never overwritten; under PolicyTakeUpstream every
// fetched entry wins. Comments from the fetched store are not merged — the
// baseline template owns document structure.
func (s *Store) Merge(fetched *Store, policy Policy) {
	for _, e := range fetched.Entries() {
		if policy == PolicyKeepLocal && s.WasModified(e.Name) {
			continue
		}
		s.AddTag(e)
	}
}

// Save serializes the store to its backing path. On success the store is
// saved; on failure in-memory state is untouched so the caller may retry.
func (s *Store) Save() error {
	if s.path == "" {
		return errors.New("store has no backing path")
	}
	if err := s.doc.WriteFile(s.path, android.MarshalOptions{IncludeModified: true}); err != nil {
		return err
	}
	s.saved = true
	return nil
}

// Remove deletes the backing file. Missing files are not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
