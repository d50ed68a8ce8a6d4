package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stringsync/stringsync/android"
	"github.com/stringsync/stringsync/langmeta"
	"github.com/stringsync/stringsync/notify"
	"github.com/stringsync/stringsync/store"
	"github.com/stringsync/stringsync/vcs"
)

// Stage identifies one step of the sync pipeline.
type Stage int

const (
	// StageClone fetches a transient working copy of the upstream.
	StageClone Stage = iota
	// StageScan searches the working copy for resource files.
	StageScan
	// StageMerge routes every discovered file into the baseline or a
	// locale store.
	StageMerge
)

// String returns the stage name for progress display and logs.
func (s Stage) String() string {
	switch s {
	case StageClone:
		return "clone"
	case StageScan:
		return "scan"
	case StageMerge:
		return "merge"
	}
	return "unknown"
}

// ProgressFunc receives a notification as each pipeline stage starts.
type ProgressFunc func(stage Stage, description string)

// Result is the outcome of a sync delivered by SyncAsync.
type Result struct {
	// Err is nil on success. On failure Description carries the
	// human-readable summary shown to the user.
	Err         error
	Description string
}

// scratchDirName is the shared transient working-copy location under the
// repos root. It is purged unconditionally before each clone, which is why
// overlapping syncs must not run.
const scratchDirName = "tmp_clone"

func (h *Handler) scratchDir() string {
	return filepath.Join(h.reposRoot, scratchDirName)
}

// Sync runs the clone / scan / merge pipeline to completion. Stages run
// strictly in order; progress is reported as each stage starts. On
// transport failure or when no resources are discovered the whole
// repository handle is torn down — an unreachable or resource-less
// upstream invalidates the local scaffold.
//
// Overlapping syncs on one handle are rejected by the repository's lock
// file rather than racing on the shared scratch directory.
func (h *Handler) Sync(ctx context.Context, policy store.Policy, progress ProgressFunc) error {
	if progress == nil {
		progress = func(Stage, string) {}
	}
	if err := h.lock.BeginSync(); err != nil {
		return err
	}
	// EndSync persists the ledger, which would re-create a torn-down root;
	// failure paths release the guard with AbortSync instead.
	endSync := func() {
		if err := h.lock.EndSync(); err != nil {
			h.log.WithError(err).Warn("could not persist checksum ledger")
		}
	}

	// Stage 1: clone into a purged scratch directory.
	progress(StageClone, "Cloning repository")
	scratch := h.scratchDir()
	if err := h.client.DeleteWorkingCopy(scratch); err != nil {
		h.lock.AbortSync()
		return fmt.Errorf("purging scratch directory: %w", err)
	}
	if err := h.client.Clone(ctx, h.gitURL, scratch); err != nil {
		h.log.WithError(err).Error("clone failed, deleting repository")
		h.teardown()
		return fmt.Errorf("could not clone %s: %w", h.Name(), err)
	}

	// Stage 2: scan for resource files.
	progress(StageScan, "Scanning repository")
	files, err := h.client.FindResourceFiles(scratch)
	if err == nil && len(files) == 0 {
		err = fmt.Errorf("no string resources found in %s", h.Name())
	}
	if err != nil {
		h.log.WithError(err).Error("scan failed, deleting repository")
		if derr := h.client.DeleteWorkingCopy(scratch); derr != nil {
			h.log.WithError(derr).Warn("could not delete working copy")
		}
		h.teardown()
		return err
	}

	// Stage 3: route every discovered file into the baseline or a locale
	// store, then drop the working copy.
	progress(StageMerge, "Copying resources")
	err = h.mergeResources(scratch, files, policy)
	if derr := h.client.DeleteWorkingCopy(scratch); derr != nil {
		h.log.WithError(derr).Warn("could not delete working copy")
	}
	endSync()
	h.loadLocales()
	h.bus.Publish(notify.RepositoryCountChanged{Root: h.reposRoot})
	return err
}

// SyncAsync runs Sync on a background goroutine, forwarding progress
// callbacks, and delivers the single Result when the pipeline finishes.
// The caller must not start another sync on this handle until then.
func (h *Handler) SyncAsync(ctx context.Context, policy store.Policy, progress ProgressFunc) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		err := h.Sync(ctx, policy, progress)
		res := Result{Err: err, Description: "Repository synced"}
		if err != nil {
			res.Description = err.Error()
		}
		done <- res
	}()
	return done
}

// teardown deletes the repository root after a fatal pipeline failure and
// releases the sync guard so the handle can retry.
func (h *Handler) teardown() {
	if err := h.Delete(); err != nil {
		h.log.WithError(err).Warn("could not delete repository root")
	}
	h.lock.AbortSync()
}

// mergeResources is the copy/merge stage. Default-locale files rebuild the
// cleaned baseline and the remote path table; locale files merge into their
// locale's consolidated store under the active policy, one load-merge-save
// cycle per contributing file. A save failure for one file does not stop
// the remaining files; the first error is reported once all are processed.
func (h *Handler) mergeResources(scratch string, files []string, policy store.Policy) error {
	// The baseline is rebuilt from scratch on every sync: upstream files
	// may have been renamed, removed or added since the last one.
	if err := h.settings.ClearRemotePaths(); err != nil {
		return err
	}
	for _, f := range h.DefaultFiles() {
		if err := os.Remove(f); err != nil {
			h.log.WithError(err).WithField("file", filepath.Base(f)).Warn("could not remove stale baseline file")
		}
	}
	h.lock.DropLocale(DefaultLocale)

	var firstErr error
	for _, clonedFile := range files {
		locale, ok := vcs.ExtractLocale(clonedFile)
		if !ok {
			continue
		}
		var err error
		if locale == "" {
			err = h.ingestDefaultFile(scratch, clonedFile)
		} else {
			err = h.mergeLocaleFile(langmeta.Canonicalize(locale), clonedFile, policy)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ingestDefaultFile cleans one upstream default-locale file into the
// baseline and records its upstream path. Files without translatable
// entries (and unparsable ones) are skipped.
func (h *Handler) ingestDefaultFile(scratch, clonedFile string) error {
	doc, err := android.ParseFile(clonedFile)
	if err != nil {
		h.log.WithError(err).WithField("file", filepath.Base(clonedFile)).Warn("skipping malformed resource file")
		return nil
	}
	if !doc.HasTranslatable() {
		return nil
	}

	filename := filepath.Base(clonedFile)
	if err := android.Clean(doc).WriteFile(h.defaultFile(filename), android.MarshalOptions{}); err != nil {
		return fmt.Errorf("writing baseline %s: %w", filename, err)
	}

	remotePath := strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(clonedFile, scratch)), "/")
	if err := h.settings.AddRemotePath(filename, remotePath); err != nil {
		return err
	}

	for _, e := range doc.Entries {
		if !e.IsComment() {
			h.lock.Record(DefaultLocale, e.Name, e.ContentKey())
		}
	}
	h.log.WithFields(logrus.Fields{"file": filename, "remote": remotePath}).Info("baseline file ingested")
	return nil
}

// mergeLocaleFile folds one fetched locale file into the locale's
// consolidated store. Multiple upstream files contributing to the same
// locale each run their own cycle, reading back the previous save; the
// store stays internally consistent even if a later cycle fails.
func (h *Handler) mergeLocaleFile(locale, clonedFile string, policy store.Policy) error {
	existing := store.Load(h.resourcesFile(locale))
	fetched := store.Load(clonedFile)
	existing.Merge(fetched, policy)

	for _, e := range fetched.Entries() {
		h.lock.Record(locale, e.Name, e.ContentKey())
	}

	if err := existing.Save(); err != nil {
		return fmt.Errorf("saving locale %s: %w", locale, err)
	}
	h.log.WithFields(logrus.Fields{
		"locale": locale,
		"file":   filepath.Base(clonedFile),
		"policy": policy,
	}).Info("locale file merged")
	return nil
}
