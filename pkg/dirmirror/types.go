package dirmirror

import (
	"time"

	"github.com/spf13/afero"
	log "github.com/sirupsen/logrus"
)

// Options configures a mirror run.
type Options struct {
	// Source and Destination are the two roots. Relative paths resolve
	// against the working directory.
	Source      string
	Destination string

	// LogFile is the run log path. Default: "last.log".
	LogFile string

	// DryRun evaluates every file but creates and copies nothing.
	DryRun bool

	// SortEntries visits directory children in lexical order.
	SortEntries bool

	// NoPreserveModTime stamps copies with the copy time instead of the
	// source modification time.
	NoPreserveModTime bool

	// Exclude holds doublestar patterns relative to the source root.
	Exclude []string

	// Fs is the filesystem to operate on. Default: the OS filesystem.
	Fs afero.Fs

	// Logger receives diagnostics. Default: discarded.
	Logger log.FieldLogger
}

// Failure describes one entry that could not be mirrored.
type Failure struct {
	Kind   string
	Source string // empty for directory failures
	Dest   string
	Reason string
}

// Result holds the outcome of a run.
type Result struct {
	Source      string
	Destination string
	LogFile     string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time

	Copied            int
	FailedCopies      int
	FailedDirectories int
	UpToDate          int
	Excluded          int
	EnumerationErrors int

	// LogLines is the number of lines written to the run log.
	LogLines int

	Failures []Failure
}

// Failed reports whether any entry could not be mirrored.
func (r *Result) Failed() bool {
	return r.FailedCopies > 0 || r.FailedDirectories > 0 || r.EnumerationErrors > 0
}
