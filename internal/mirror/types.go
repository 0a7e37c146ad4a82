package mirror

import "github.com/bianoble/dirmirror/internal/runlog"

// Options configures a mirror run.
type Options struct {
	// DryRun evaluates staleness without creating or copying anything.
	DryRun bool

	// SortEntries visits the children of each directory in lexical order
	// instead of enumeration order.
	SortEntries bool

	// Exclude holds doublestar patterns matched against the slash-separated
	// path relative to the source root.
	Exclude []string
}

// Result holds the counters of a mirror run.
type Result struct {
	// Copied counts successful copies, or would-be copies in a dry run.
	Copied            int
	FailedCopies      int
	FailedDirectories int
	UpToDate          int
	Excluded          int
	EnumerationErrors int

	// Failures lists every failure outcome in traversal order.
	Failures []runlog.Outcome
}

// Failed reports whether any entry-level failure happened.
func (r *Result) Failed() bool {
	return r.FailedCopies > 0 || r.FailedDirectories > 0 || r.EnumerationErrors > 0
}
