// Package repo implements the repository handle: it owns one upstream
// repository's on-disk root, its locale stores and default baseline, and
// drives the clone / scan / merge sync pipeline against the transport.
//
// On-disk layout of one repository root:
//
//	<repos-root>/<urlHash>/
//	    default/<filename>.xml    cleaned baseline, one file per upstream file
//	    <locale>/strings.xml      one consolidated store per locale
//	    settings.json             gitUrl, lastLocale, remotePaths
//	    stringsync.lock           upstream checksums + sync guard
package repo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stringsync/stringsync/android"
	"github.com/stringsync/stringsync/langmeta"
	"github.com/stringsync/stringsync/lockfile"
	"github.com/stringsync/stringsync/notify"
	"github.com/stringsync/stringsync/settings"
	"github.com/stringsync/stringsync/store"
	"github.com/stringsync/stringsync/vcs"
)

// DefaultLocale is the reserved directory name of the source baseline.
const DefaultLocale = langmeta.DefaultLocale

// storeFileName is the consolidated store file of a non-default locale.
const storeFileName = "strings.xml"

// ownerRepoPattern recognizes GitHub upstream URLs.
var ownerRepoPattern = regexp.MustCompile(
	`(?:https?://github\.com/|git@github\.com:)([\w-]+)/([\w-]+?)(?:\.git)?/?$`)

// localeIDPattern validates locale identifiers before any store is created:
// a 2-3 letter language, optional subtags (regions, scripts, Android -r
// region markers).
var localeIDPattern = regexp.MustCompile(`^[A-Za-z]{2,3}(?:-[A-Za-z0-9]{2,8})*$`)

// Handler owns one repository root.
type Handler struct {
	reposRoot string
	root      string
	gitURL    string

	settings *settings.Settings
	lock     *lockfile.LockFile
	client   vcs.Client
	bus      *notify.Bus
	log      *logrus.Entry

	locales []string
}

// NormalizeURL renders an upstream URL in its canonical identity form:
// no protocol prefix, no .git suffix, no trailing slash. SSH-style
// git@host:owner/repo spellings collapse to host/owner/repo. Two URLs that
// normalize identically resolve to the same repository root.
func NormalizeURL(url string) string {
	u := strings.TrimSpace(url)
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if rest, ok := strings.CutPrefix(u, "git@"); ok {
		u = strings.Replace(rest, ":", "/", 1)
	}
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")
	return u
}

// ID derives the stable on-disk identity of an upstream URL.
func ID(url string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(url)))
	return hex.EncodeToString(sum[:8])
}

// New opens (creating if necessary) the handle for an upstream URL under
// reposRoot. The normalized URL is persisted to the settings record
// immediately so the root is self-describing.
func New(reposRoot, gitURL string, client vcs.Client, bus *notify.Bus) (*Handler, error) {
	if NormalizeURL(gitURL) == "" {
		return nil, fmt.Errorf("empty repository URL")
	}
	root := filepath.Join(reposRoot, ID(gitURL))
	h, err := open(reposRoot, root, client, bus)
	if err != nil {
		return nil, err
	}
	h.gitURL = gitURL
	if err := h.settings.SetGitURL(gitURL); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads the handle for an existing repository root directory. The
// upstream URL comes from the stored settings record.
func Open(reposRoot, dirName string, client vcs.Client, bus *notify.Bus) (*Handler, error) {
	h, err := open(reposRoot, filepath.Join(reposRoot, dirName), client, bus)
	if err != nil {
		return nil, err
	}
	h.gitURL = h.settings.GitURL()
	return h, nil
}

func open(reposRoot, root string, client vcs.Client, bus *notify.Bus) (*Handler, error) {
	sett, err := settings.Load(root)
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(root)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		reposRoot: reposRoot,
		root:      root,
		settings:  sett,
		lock:      lock,
		client:    client,
		bus:       bus,
		log:       logrus.WithField("repo", filepath.Base(root)),
	}
	h.loadLocales()
	return h, nil
}

// ListRepositories opens a handle for every repository root under
// reposRoot, sorted by display name.
func ListRepositories(reposRoot string, client vcs.Client, bus *notify.Bus) ([]*Handler, error) {
	entries, err := os.ReadDir(reposRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", reposRoot, err)
	}
	var handlers []*Handler
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		// The scratch working copy lives next to the repository roots and
		// may linger after a crash; it is not a repository.
		if e.Name() == scratchDirName {
			continue
		}
		h, err := Open(reposRoot, e.Name(), client, bus)
		if err != nil {
			logrus.WithError(err).WithField("dir", e.Name()).Warn("skipping unreadable repository root")
			continue
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// Root returns the repository root directory.
func (h *Handler) Root() string { return h.root }

// GitURL returns the upstream URL as stored.
func (h *Handler) GitURL() string { return h.gitURL }

// Name returns the display identity: the normalized upstream URL.
func (h *Handler) Name() string { return NormalizeURL(h.gitURL) }

// ShortName returns the last path component of the display identity.
func (h *Handler) ShortName() string {
	name := h.Name()
	return name[strings.LastIndex(name, "/")+1:]
}

// IsGitHub reports whether the upstream URL points at GitHub.
func (h *Handler) IsGitHub() bool {
	return ownerRepoPattern.MatchString(h.gitURL)
}

// OwnerRepo splits a GitHub upstream URL into owner and repository.
func (h *Handler) OwnerRepo() (owner, repository string, err error) {
	m := ownerRepoPattern.FindStringSubmatch(h.gitURL)
	if m == nil {
		return "", "", fmt.Errorf("%s is not a GitHub repository URL", h.gitURL)
	}
	return m[1], m[2], nil
}

// Settings exposes the repository's settings record.
func (h *Handler) Settings() *settings.Settings { return h.settings }

// ---------------------------------------------------------------------------
// Locale lifecycle
// ---------------------------------------------------------------------------

// resourcesFile returns the consolidated store path for a locale.
func (h *Handler) resourcesFile(locale string) string {
	return filepath.Join(h.root, locale, storeFileName)
}

// defaultFile returns the baseline path for an upstream filename.
func (h *Handler) defaultFile(filename string) string {
	return filepath.Join(h.root, DefaultLocale, filename)
}

// DefaultFiles returns the cleaned baseline file paths in lexical order.
func (h *Handler) DefaultFiles() []string {
	entries, err := os.ReadDir(filepath.Join(h.root, DefaultLocale))
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(h.root, DefaultLocale, e.Name()))
		}
	}
	return files
}

// HasDefaultLocale reports whether the baseline holds at least one file.
func (h *Handler) HasDefaultLocale() bool {
	return len(h.DefaultFiles()) > 0
}

// loadLocales scans the root for locale directories that contain at least
// one resource store file, sorted by display name.
func (h *Handler) loadLocales() {
	h.locales = h.locales[:0]
	entries, err := os.ReadDir(h.root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(h.root, e.Name()))
		if err != nil || len(sub) == 0 {
			continue
		}
		h.locales = append(h.locales, e.Name())
	}
	langmeta.SortByDisplay(h.locales)
}

// Locales returns all known locales sorted by display name. The default
// sentinel is listed like any other locale; translation-target pickers are
// expected to filter it out.
func (h *Handler) Locales() []string {
	return append([]string(nil), h.locales...)
}

// HasLocale reports whether the locale's store file exists on disk.
func (h *Handler) HasLocale(locale string) bool {
	fi, err := os.Stat(h.resourcesFile(locale))
	return err == nil && fi.Mode().IsRegular()
}

// ValidLocale reports whether an identifier is acceptable as a locale
// directory name. The default sentinel is reserved.
func ValidLocale(locale string) bool {
	return locale != DefaultLocale && localeIDPattern.MatchString(locale)
}

// CreateLocale materializes an empty store for the locale. Success is a
// no-op when the locale already exists; a locale is only real once its file
// exists on disk.
func (h *Handler) CreateLocale(locale string) error {
	if !ValidLocale(locale) {
		return fmt.Errorf("invalid locale %q", locale)
	}
	if h.HasLocale(locale) {
		return nil
	}
	st := store.Load(h.resourcesFile(locale))
	if err := st.Save(); err != nil {
		return fmt.Errorf("creating locale %s: %w", locale, err)
	}
	h.loadLocales()
	return nil
}

// DeleteLocale removes the locale's store and directory. Idempotent on a
// missing locale.
func (h *Handler) DeleteLocale(locale string) error {
	if locale == DefaultLocale || !h.HasLocale(locale) {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(h.root, locale)); err != nil {
		return fmt.Errorf("deleting locale %s: %w", locale, err)
	}
	h.lock.DropLocale(locale)
	if err := h.lock.Save(); err != nil {
		h.log.WithError(err).Warn("could not persist lock file after locale delete")
	}
	h.loadLocales()
	return nil
}

// IsEmpty reports whether the repository has no locales at all.
func (h *Handler) IsEmpty() bool { return len(h.locales) == 0 }

// AnyModified reports whether any locale's store holds entries that
// diverged from upstream; used to gate destructive navigation.
func (h *Handler) AnyModified() bool {
	for _, locale := range h.locales {
		if locale == DefaultLocale {
			continue
		}
		if store.Load(h.resourcesFile(locale)).AnyModified() {
			return true
		}
	}
	return false
}

// Delete erases the whole repository root and announces the change.
func (h *Handler) Delete() error {
	err := os.RemoveAll(h.root)
	h.locales = nil
	h.bus.Publish(notify.RepositoryCountChanged{Root: h.reposRoot})
	return err
}

// ---------------------------------------------------------------------------
// Loading and editing resources
// ---------------------------------------------------------------------------

// LoadResources loads the consolidated store of a locale.
func (h *Handler) LoadResources(locale string) *store.Store {
	return store.Load(h.resourcesFile(locale))
}

// LoadDefaultResources builds the in-memory union of all baseline files,
// used as the translation-source lookup. The files themselves stay
// separate on disk.
func (h *Handler) LoadDefaultResources() *android.Document {
	union := android.NewDocument()
	for _, f := range h.DefaultFiles() {
		doc, err := android.ParseFile(f)
		if err != nil {
			h.log.WithError(err).WithField("file", filepath.Base(f)).Warn("skipping unreadable baseline file")
			continue
		}
		for _, e := range doc.Entries {
			if !e.IsComment() {
				union.Add(e)
			}
		}
	}
	return union
}

// SetTranslation records a user edit to one entry of a locale's store and
// saves the store. The entry keeps its modified flag unless the edit
// restores the exact last-synced upstream content.
func (h *Handler) SetTranslation(locale, name, value string) error {
	if !h.HasLocale(locale) {
		return fmt.Errorf("locale %s does not exist", locale)
	}
	st := h.LoadResources(locale)
	if err := st.SetContent(name, value); err != nil {
		return err
	}
	if e, ok := st.Lookup(name); ok && h.lock.Matches(locale, name, e.ContentKey()) {
		st.ClearModified(name)
	}
	if err := st.Save(); err != nil {
		return err
	}
	return h.settings.SetLastLocale(locale)
}

// ---------------------------------------------------------------------------
// Building translated output documents
// ---------------------------------------------------------------------------

// ApplyDefaultTemplate renders the locale's translation of one baseline
// template file: structurally identical to the template, carrying the
// locale's values where present.
func (h *Handler) ApplyDefaultTemplate(templatePath, locale string) ([]byte, error) {
	if !h.HasLocale(locale) {
		return nil, fmt.Errorf("locale %s does not exist", locale)
	}
	tmpl, err := android.ParseFile(templatePath)
	if err != nil {
		return nil, err
	}
	out := android.ApplyTemplate(tmpl, h.LoadResources(locale))
	return out.Marshal(), nil
}

// MergeDefaultTemplate renders the locale's translation of the whole
// baseline. With more than one baseline file the outputs are concatenated,
// each introduced by a filename comment separator.
func (h *Handler) MergeDefaultTemplate(locale string) ([]byte, error) {
	files := h.DefaultFiles()
	if len(files) == 0 {
		return nil, fmt.Errorf("repository has no default baseline")
	}
	if len(files) == 1 {
		return h.ApplyDefaultTemplate(files[0], locale)
	}
	var b strings.Builder
	for _, f := range files {
		out, err := h.ApplyDefaultTemplate(f, locale)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "<!-- %s -->\n", filepath.Base(f))
		b.Write(out)
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// TemplateRemotePaths maps each baseline template path to the upstream
// path a translated document for the locale should be pushed to, derived
// by substituting the values/ path component with values-<locale>/.
func (h *Handler) TemplateRemotePaths(locale string) map[string]string {
	out := make(map[string]string)
	for filename, remote := range h.settings.RemotePaths() {
		translated := strings.Replace(remote, "/values/", "/values-"+locale+"/", 1)
		out[h.defaultFile(filename)] = translated
	}
	return out
}

// HasRemotePaths reports whether every baseline file has a recorded
// upstream path association.
func (h *Handler) HasRemotePaths() bool {
	return len(h.DefaultFiles()) == len(h.settings.RemotePaths())
}
