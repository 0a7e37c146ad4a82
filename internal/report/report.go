// Package report reads and writes the YAML summary of a mirror run.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the machine-readable outcome of one run.
type Summary struct {
	Version     int       `yaml:"version"`
	Source      string    `yaml:"source"`
	Destination string    `yaml:"destination"`
	DryRun      bool      `yaml:"dry_run"`
	StartedAt   time.Time `yaml:"started_at"`
	FinishedAt  time.Time `yaml:"finished_at"`

	Copied            int `yaml:"copied"`
	FailedCopies      int `yaml:"failed_copies"`
	FailedDirectories int `yaml:"failed_directories"`
	UpToDate          int `yaml:"up_to_date"`
	Excluded          int `yaml:"excluded"`
	EnumerationErrors int `yaml:"enumeration_errors"`

	Failures []Failure `yaml:"failures,omitempty"`
}

// Failure is one failed entry, in traversal order.
type Failure struct {
	Kind   string `yaml:"kind"`
	Source string `yaml:"source,omitempty"`
	Dest   string `yaml:"dest"`
	Reason string `yaml:"reason"`
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Load reads and validates a run summary.
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary %s: %w", path, err)
	}

	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary %s: %w", path, err)
	}

	if errs := Validate(&s); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &s, nil
}

// Save writes a summary atomically using a temp file and rename.
func Save(path string, s *Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp summary %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp summary to %s: %w", path, err)
	}
	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("summary validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Summary for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(s *Summary) []string {
	var errs []string

	if s.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d, only version 1 is supported", s.Version))
	}
	if s.Source == "" {
		errs = append(errs, "'source' is required")
	}
	if s.Destination == "" {
		errs = append(errs, "'destination' is required")
	}
	if s.FinishedAt.Before(s.StartedAt) {
		errs = append(errs, "'finished_at' is before 'started_at'")
	}

	counters := []struct {
		name  string
		value int
	}{
		{"copied", s.Copied},
		{"failed_copies", s.FailedCopies},
		{"failed_directories", s.FailedDirectories},
		{"up_to_date", s.UpToDate},
		{"excluded", s.Excluded},
		{"enumeration_errors", s.EnumerationErrors},
	}
	for _, c := range counters {
		if c.value < 0 {
			errs = append(errs, fmt.Sprintf("'%s' must not be negative", c.name))
		}
	}

	if got, want := len(s.Failures), s.FailedCopies+s.FailedDirectories; got != want {
		errs = append(errs, fmt.Sprintf("%d failures listed, counters report %d", got, want))
	}
	for i, f := range s.Failures {
		prefix := fmt.Sprintf("failure[%d]", i)
		if f.Kind == "" {
			errs = append(errs, fmt.Sprintf("%s: 'kind' is required", prefix))
		}
		if f.Dest == "" {
			errs = append(errs, fmt.Sprintf("%s: 'dest' is required", prefix))
		}
	}

	return errs
}
