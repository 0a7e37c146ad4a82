// Package mirror implements the one-way, additive directory mirror.
//
// The engine walks the source tree depth first. For every directory level it
// makes sure the mirrored destination directory exists, recurses into
// subdirectories and hands each file to the sync decision, which copies the
// file when the destination copy is missing or older. Nothing is ever removed
// from the destination.
//
// Failures are confined to the entry they happen on: a file that cannot be
// copied, or a directory that cannot be created, is recorded in the run log and
// the walk carries on with the next entry.
package mirror

import (
	"context"
	"io"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/bianoble/dirmirror/internal/fsys"
	"github.com/bianoble/dirmirror/internal/runlog"
)

// Engine mirrors a source tree onto a destination tree.
type Engine struct {
	FS fsys.FS

	// Log receives one record per copy or failure. May be nil.
	Log *runlog.Logger

	// Diag receives diagnostics that are not part of the run log. May be nil.
	Diag log.FieldLogger
}

// Mirror copies the tree under sourceDir onto destDir. sourceDir must be an
// existing directory. Entry-level failures are recorded and counted, never
// returned; the only error is a cancelled ctx or invalid options.
func (e *Engine) Mirror(ctx context.Context, sourceDir, destDir string, opts Options) (*Result, error) {
	excl, err := newExcluder(opts.Exclude)
	if err != nil {
		return nil, err
	}

	w := &walker{
		engine: e,
		diag:   e.diagnostics(),
		opts:   opts,
		excl:   excl,
		root:   sourceDir,
		result: &Result{},
	}
	if err := w.mirror(ctx, sourceDir, destDir); err != nil {
		return w.result, err
	}
	return w.result, nil
}

// SyncFile copies sourcePath over destPath when destPath is stale. It returns
// false, and touches nothing, when destPath is up to date.
func (e *Engine) SyncFile(sourcePath, destPath string) (runlog.Outcome, bool) {
	return e.syncFile(sourcePath, destPath, false)
}

// NeedsCopy reports whether destPath is missing or older than sourcePath.
// When either modification time cannot be read the file is treated as stale.
func (e *Engine) NeedsCopy(sourcePath, destPath string) bool {
	if !e.FS.Exists(destPath) {
		return true
	}

	srcTime, srcErr := e.FS.ModTime(sourcePath)
	dstTime, dstErr := e.FS.ModTime(destPath)
	if srcErr != nil || dstErr != nil {
		diag := e.diagnostics().WithField("path", sourcePath)
		if srcErr != nil {
			diag = diag.WithField("source_error", srcErr.Error())
		}
		if dstErr != nil {
			diag = diag.WithField("dest_error", dstErr.Error())
		}
		diag.Debug("Modification time unavailable, copying")
		return true
	}
	return srcTime.After(dstTime)
}

func (e *Engine) syncFile(sourcePath, destPath string, dryRun bool) (runlog.Outcome, bool) {
	if !e.NeedsCopy(sourcePath, destPath) {
		return runlog.Outcome{}, false
	}

	if dryRun {
		return runlog.Outcome{Kind: runlog.WouldCopy, Source: sourcePath, Dest: destPath}, true
	}

	if err := e.FS.CopyFile(sourcePath, destPath, true); err != nil {
		return runlog.Outcome{
			Kind:   runlog.FailedToCopy,
			Source: sourcePath,
			Dest:   destPath,
			Reason: e.FS.DescribeError(err),
		}, true
	}
	return runlog.Outcome{Kind: runlog.Copied, Source: sourcePath, Dest: destPath}, true
}

func (e *Engine) diagnostics() log.FieldLogger {
	if e.Diag != nil {
		return e.Diag
	}
	discard := log.New()
	discard.SetOutput(io.Discard)
	return discard
}

// walker carries the state of one Mirror call.
type walker struct {
	engine *Engine
	diag   log.FieldLogger
	opts   Options
	excl   *excluder
	root   string
	result *Result
}

func (w *walker) mirror(ctx context.Context, sourceDir, destDir string) error {
	for entry, err := range w.children(sourceDir) {
		if err != nil {
			w.result.EnumerationErrors++
			w.diag.WithError(err).WithField("dir", sourceDir).Warn("Failed to list directory, skipping it")
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		sourcePath := filepath.Join(sourceDir, entry.Name)
		destPath := filepath.Join(destDir, entry.Name)

		if w.excluded(sourcePath) {
			w.result.Excluded++
			w.diag.WithField("path", sourcePath).Debug("Excluded")
			continue
		}

		// Checked per entry: after the first success the rest see an existing directory.
		if !w.ensureDir(destDir) {
			continue
		}

		if entry.IsDir {
			if err := w.mirror(ctx, sourcePath, destPath); err != nil {
				return err
			}
			continue
		}

		outcome, ok := w.engine.syncFile(sourcePath, destPath, w.opts.DryRun)
		if !ok {
			w.result.UpToDate++
			w.diag.WithField("path", sourcePath).Debug("Up to date")
			continue
		}
		w.record(outcome)
	}
	return nil
}

// ensureDir creates dir when it does not exist yet. It returns false after
// recording the failure when dir cannot be created.
func (w *walker) ensureDir(dir string) bool {
	fs := w.engine.FS
	if w.opts.DryRun || fs.Exists(dir) {
		return true
	}
	if err := fs.CreateDirectory(dir); err != nil {
		w.record(runlog.Outcome{
			Kind:   runlog.FailedToCreateDirectory,
			Dest:   dir,
			Reason: fs.DescribeError(err),
		})
		return false
	}
	w.diag.WithField("dir", dir).Debug("Created directory")
	return true
}

func (w *walker) children(dir string) iter.Seq2[fsys.DirEntry, error] {
	seq := w.engine.FS.ListChildren(dir)
	if !w.opts.SortEntries {
		return seq
	}

	return func(yield func(fsys.DirEntry, error) bool) {
		var entries []fsys.DirEntry
		var listErr error
		for entry, err := range seq {
			if err != nil {
				listErr = err
				break
			}
			entries = append(entries, entry)
		}

		slices.SortFunc(entries, func(a, b fsys.DirEntry) int {
			return strings.Compare(a.Name, b.Name)
		})
		for _, entry := range entries {
			if !yield(entry, nil) {
				return
			}
		}
		if listErr != nil {
			yield(fsys.DirEntry{}, listErr)
		}
	}
}

func (w *walker) excluded(sourcePath string) bool {
	if w.excl == nil || len(w.excl.patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, sourcePath)
	if err != nil {
		return false
	}
	return w.excl.match(rel)
}

func (w *walker) record(o runlog.Outcome) {
	switch o.Kind {
	case runlog.Copied, runlog.WouldCopy:
		w.result.Copied++
		w.diag.WithField("path", o.Source).Debug(o.Kind.String())
	case runlog.FailedToCopy:
		w.result.FailedCopies++
		w.result.Failures = append(w.result.Failures, o)
		w.diag.WithField("path", o.Source).WithField("reason", o.Reason).Warn("Failed to copy file")
	case runlog.FailedToCreateDirectory:
		w.result.FailedDirectories++
		w.result.Failures = append(w.result.Failures, o)
		w.diag.WithField("dir", o.Dest).WithField("reason", o.Reason).Warn("Failed to create directory")
	}

	if w.engine.Log != nil {
		w.engine.Log.Record(o)
	}
}
