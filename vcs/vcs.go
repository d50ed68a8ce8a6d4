// Package vcs provides the version-control transport used to fetch
// transient working copies of upstream repositories, reduced to the narrow
// interface the sync pipeline needs: clone, delete, and resource discovery.
package vcs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// Client abstracts the transport operations of the sync pipeline.
type Client interface {
	// Clone fetches a fresh working copy of url into dest. dest must not
	// exist; callers purge any previous scratch content first.
	Clone(ctx context.Context, url, dest string) error

	// DeleteWorkingCopy removes a working copy. Idempotent on a missing path.
	DeleteWorkingCopy(path string) error

	// FindResourceFiles walks root and returns every file matching the
	// values-resource convention, in lexical walk order.
	FindResourceFiles(root string) ([]string, error)
}

// localePattern matches the values-resource path convention. The single
// capturing group holds the locale; an absent group means the file belongs
// to the default locale.
var localePattern = regexp.MustCompile(`(?:^|/)values(?:-([\w-]+))?/[^/]+?\.xml$`)

// ExtractLocale extracts the locale component from a resource file path.
// ok is false when the path does not follow the values-resource convention
// at all; a matching path without a locale component returns ("", true) and
// belongs to the default locale.
func ExtractLocale(path string) (locale string, ok bool) {
	m := localePattern.FindStringSubmatch(filepath.ToSlash(path))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// GitClient implements Client on top of go-git.
type GitClient struct {
	// Depth limits clone history; 1 fetches only the tip, which is all a
	// resource scan needs. Zero means full history.
	Depth int

	log *logrus.Entry
}

// NewGitClient returns a transport with shallow clones enabled.
func NewGitClient() *GitClient {
	return &GitClient{
		Depth: 1,
		log:   logrus.WithField("component", "vcs"),
	}
}

// Clone fetches a working copy of url into dest.
func (c *GitClient) Clone(ctx context.Context, url, dest string) error {
	c.log.WithFields(logrus.Fields{"url": url, "dest": dest}).Debug("cloning repository")
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:          url,
		Depth:        c.Depth,
		SingleBranch: true,
	})
	if err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// DeleteWorkingCopy removes the working copy at path.
func (c *GitClient) DeleteWorkingCopy(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// FindResourceFiles walks root for localizable resource files. The .git
// directory is skipped.
func (c *GitClient) FindResourceFiles(root string) ([]string, error) {
	return FindResourceFiles(root)
}

// FindResourceFiles is the walk shared by every Client implementation that
// stores working copies on the local filesystem.
func FindResourceFiles(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".xml") {
			return nil
		}
		if _, ok := ExtractLocale(path); ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return found, nil
}
