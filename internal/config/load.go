package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/ianaindex"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a dirmirror.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
// A version of 0 is accepted so that partial layers may omit it.
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 0 && cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d, only version 1 is supported", cfg.Version))
	}

	if strings.ContainsRune(cfg.LogFile, 0) {
		errs = append(errs, "log_file: contains a NUL byte")
	}

	if cfg.ArgEncoding != "" {
		enc, err := ianaindex.IANA.Encoding(cfg.ArgEncoding)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("arg_encoding: unknown charset '%s'", cfg.ArgEncoding))
		case enc == nil:
			errs = append(errs, fmt.Sprintf("arg_encoding: charset '%s' is not supported", cfg.ArgEncoding))
		}
	}

	for i, p := range cfg.Exclude {
		switch {
		case strings.TrimSpace(p) == "":
			errs = append(errs, fmt.Sprintf("exclude[%d]: pattern must not be empty", i))
		case !doublestar.ValidatePattern(p):
			errs = append(errs, fmt.Sprintf("exclude[%d]: invalid pattern '%s'", i, p))
		}
	}

	return errs
}
