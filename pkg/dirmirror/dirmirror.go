// Package dirmirror provides the public Go library API for dirmirror.
//
// dirmirror makes a destination directory tree contain an up-to-date copy of
// every file under a source tree. Files are copied when the destination copy
// is missing or older than the source; nothing is ever deleted. Every copy and
// every failure is recorded, one line each, in a run log that is recreated on
// each run.
//
// # Basic Usage
//
//	result, err := dirmirror.Run(ctx, dirmirror.Options{
//	    Source:      "/data/photos",
//	    Destination: "/backup/photos",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d copied, %d failed\n", result.Copied, result.FailedCopies)
package dirmirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/bianoble/dirmirror/internal/fsys"
	"github.com/bianoble/dirmirror/internal/mirror"
	"github.com/bianoble/dirmirror/internal/pathenc"
	"github.com/bianoble/dirmirror/internal/report"
	"github.com/bianoble/dirmirror/internal/runlog"
)

// Run-level errors. Entry-level failures never surface as errors; they are
// counted in Result and written to the run log.
var (
	ErrSourceMissing      = errors.New("source directory does not exist")
	ErrSourceNotDirectory = errors.New("source is not a directory")
	ErrLogUnavailable     = errors.New("run log unavailable")
	ErrOverlap            = pathenc.ErrOverlap
)

// Run mirrors opts.Source onto opts.Destination.
//
// The destination is not touched unless the run log was opened and the source
// root is an existing directory. A non-nil Result is returned whenever
// mirroring started, even if Run also returns an error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Source == "" || opts.Destination == "" {
		return nil, errors.New("source and destination are required")
	}
	if opts.LogFile == "" {
		opts.LogFile = runlog.DefaultFileName
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	src, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolving source path: %w", err)
	}
	dst, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolving destination path: %w", err)
	}
	if err := pathenc.CheckOverlap(src, dst); err != nil {
		return nil, err
	}

	// Validate patterns before the log is truncated.
	if errs := mirror.ValidatePatterns(opts.Exclude); len(errs) > 0 {
		return nil, fmt.Errorf("invalid options: %s", errs[0])
	}

	runLog, err := runlog.Create(opts.Fs, opts.LogFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogUnavailable, err)
	}

	fs := fsys.New(opts.Fs)
	fs.PreserveModTime = !opts.NoPreserveModTime

	if !fs.Exists(src) {
		// Logged as given, not as resolved.
		runLog.SourceMissing(opts.Source)
		if cerr := runLog.Close(); cerr != nil {
			return nil, errors.Join(fmt.Errorf("%w: %s", ErrSourceMissing, src), fmt.Errorf("%w: %w", ErrLogUnavailable, cerr))
		}
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	if !fs.IsDirectory(src) {
		_ = runLog.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceNotDirectory, src)
	}

	eng := &mirror.Engine{FS: fs, Log: runLog, Diag: opts.Logger}
	result := &Result{
		Source:      src,
		Destination: dst,
		LogFile:     opts.LogFile,
		DryRun:      opts.DryRun,
		StartedAt:   time.Now(),
	}

	mres, mirrorErr := eng.Mirror(ctx, src, dst, mirror.Options{
		DryRun:      opts.DryRun,
		SortEntries: opts.SortEntries,
		Exclude:     opts.Exclude,
	})
	closeErr := runLog.Close()

	// Measured on the monotonic clock; never before StartedAt.
	result.FinishedAt = result.StartedAt.Add(time.Since(result.StartedAt))
	result.LogLines = runLog.Lines()
	if mres != nil {
		result.fill(mres)
	}

	if mirrorErr != nil {
		return result, fmt.Errorf("mirroring %s: %w", src, mirrorErr)
	}
	if closeErr != nil {
		return result, fmt.Errorf("%w: %w", ErrLogUnavailable, closeErr)
	}
	return result, nil
}

func (r *Result) fill(m *mirror.Result) {
	r.Copied = m.Copied
	r.FailedCopies = m.FailedCopies
	r.FailedDirectories = m.FailedDirectories
	r.UpToDate = m.UpToDate
	r.Excluded = m.Excluded
	r.EnumerationErrors = m.EnumerationErrors

	r.Failures = make([]Failure, 0, len(m.Failures))
	for _, o := range m.Failures {
		r.Failures = append(r.Failures, Failure{
			Kind:   o.Kind.String(),
			Source: o.Source,
			Dest:   o.Dest,
			Reason: o.Reason,
		})
	}
}

// SaveSummary writes r as a YAML run summary to path, atomically.
func (r *Result) SaveSummary(path string) error {
	finished := r.FinishedAt
	if finished.Before(r.StartedAt) {
		finished = r.StartedAt
	}
	s := &report.Summary{
		Version:           1,
		Source:            r.Source,
		Destination:       r.Destination,
		DryRun:            r.DryRun,
		StartedAt:         r.StartedAt.UTC(),
		FinishedAt:        finished.UTC(),
		Copied:            r.Copied,
		FailedCopies:      r.FailedCopies,
		FailedDirectories: r.FailedDirectories,
		UpToDate:          r.UpToDate,
		Excluded:          r.Excluded,
		EnumerationErrors: r.EnumerationErrors,
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, report.Failure(f))
	}

	if errs := report.Validate(s); len(errs) > 0 {
		return &report.ValidationError{Errors: errs}
	}
	return report.Save(path, s)
}
