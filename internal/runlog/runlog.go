// Package runlog records the outcome of every mirror action to a run-scoped text log.
//
// The log is append-only and line oriented. It is created (truncated) once at the
// start of a run and closed once at the end; nothing reads it back.
package runlog

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultFileName is the log file created in the working directory.
const DefaultFileName = "last.log"

// Kind identifies what happened to one file or directory.
type Kind int

const (
	Copied Kind = iota
	FailedToCopy
	FailedToCreateDirectory
	WouldCopy
)

func (k Kind) String() string {
	switch k {
	case Copied:
		return "copied"
	case FailedToCopy:
		return "failed to copy"
	case FailedToCreateDirectory:
		return "failed to create directory"
	case WouldCopy:
		return "would copy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one copy or directory-creation attempt.
// Source is empty for FailedToCreateDirectory.
type Outcome struct {
	Kind   Kind
	Source string
	Dest   string
	Reason string
}

// Line renders the outcome as it appears in the log, without the newline.
func (o Outcome) Line() string {
	switch o.Kind {
	case Copied:
		return fmt.Sprintf("'%s' -> '%s'", o.Source, o.Dest)
	case FailedToCopy:
		return fmt.Sprintf("FAILED to copy '%s' to '%s' - %s", o.Source, o.Dest, o.Reason)
	case FailedToCreateDirectory:
		return fmt.Sprintf("FAILED to create '%s' - %s", o.Dest, o.Reason)
	case WouldCopy:
		return fmt.Sprintf("WOULD copy '%s' to '%s'", o.Source, o.Dest)
	default:
		return fmt.Sprintf("%s '%s' '%s' %s", o.Kind, o.Source, o.Dest, o.Reason)
	}
}

// Logger writes one UTF-8 line per record. It is not safe for concurrent use.
// A write error is kept and returned by Close; later records are dropped.
type Logger struct {
	w      *transform.Writer
	closer io.Closer
	lines  int
	err    error
}

// New returns a Logger writing to w. Close does not close w.
func New(w io.Writer) *Logger {
	// Invalid byte sequences (non-UTF-8 file names) are replaced so the log stays valid UTF-8.
	enc := encoding.ReplaceUnsupported(unicode.UTF8.NewEncoder())
	return &Logger{w: transform.NewWriter(w, enc)}
}

// Create truncates or creates the log file at path on fs.
func Create(fs afero.Fs, path string) (*Logger, error) {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating log file %s: %w", path, err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// Record appends the line for o.
func (l *Logger) Record(o Outcome) {
	l.writeLine(o.Line())
}

// SourceMissing records that the source root does not exist.
func (l *Logger) SourceMissing(source string) {
	l.writeLine(fmt.Sprintf("The source directory '%s' does not exist", source))
}

// Lines reports how many lines have been written.
func (l *Logger) Lines() int {
	return l.lines
}

// Close flushes buffered output and closes the underlying file, if any.
func (l *Logger) Close() error {
	err := l.w.Close()
	if l.err == nil {
		l.err = err
	}
	if l.closer != nil {
		if cerr := l.closer.Close(); l.err == nil {
			l.err = cerr
		}
		l.closer = nil
	}
	return l.err
}

func (l *Logger) writeLine(line string) {
	if l.err != nil {
		return
	}
	if _, err := io.WriteString(l.w, line+"\n"); err != nil {
		l.err = fmt.Errorf("writing log: %w", err)
		return
	}
	l.lines++
}
