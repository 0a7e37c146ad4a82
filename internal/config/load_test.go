package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exampleConfig = `version: 1
log_file: logs/mirror.log
sort_entries: true
preserve_mod_time: false
arg_encoding: windows-1252
exclude:
  - "**/.git"
  - "*.tmp"
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func containsSubstring(errs []string, sub string) bool {
	for _, e := range errs {
		if strings.Contains(e, sub) {
			return true
		}
	}
	return false
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), exampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
	if cfg.LogFile != "logs/mirror.log" {
		t.Errorf("log_file = %q", cfg.LogFile)
	}
	if !cfg.Sorted() {
		t.Error("sort_entries should be true")
	}
	if cfg.PreservesModTime() {
		t.Error("preserve_mod_time should be false")
	}
	if cfg.ArgEncoding != "windows-1252" {
		t.Errorf("arg_encoding = %q", cfg.ArgEncoding)
	}
	if len(cfg.Exclude) != 2 {
		t.Errorf("exclude = %v, want 2 patterns", cfg.Exclude)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SortEntries != nil || cfg.PreserveModTime != nil {
		t.Errorf("unset booleans should stay nil: %+v", cfg)
	}
	if !cfg.PreservesModTime() {
		t.Error("preserve_mod_time defaults to true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/dirmirror.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "exclude: [unclosed\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadInvalidConfigReturnsValidationError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: 2\nexclude: [\"\"]\n")

	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("errors = %v, want 2", verr.Errors)
	}
	if !strings.Contains(verr.Error(), "config validation failed") {
		t.Errorf("unexpected message: %s", verr.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unsupported version", Config{Version: 99}, "unsupported version"},
		{"unknown charset", Config{ArgEncoding: "no-such-charset"}, "unknown charset"},
		{"empty pattern", Config{Exclude: []string{"  "}}, "must not be empty"},
		{"bad pattern", Config{Exclude: []string{"[abc"}}, "invalid pattern"},
		{"nul in log file", Config{LogFile: "a\x00b"}, "NUL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.cfg)
			if !containsSubstring(errs, tt.want) {
				t.Errorf("expected %q error, got: %v", tt.want, errs)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if errs := Validate(Defaults()); len(errs) > 0 {
		t.Errorf("defaults should validate, got: %v", errs)
	}
	if errs := Validate(&Config{}); len(errs) > 0 {
		t.Errorf("an empty layer should validate, got: %v", errs)
	}
	if errs := Validate(&Config{ArgEncoding: "Shift_JIS"}); len(errs) > 0 {
		t.Errorf("Shift_JIS should validate, got: %v", errs)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.LogFile != "last.log" {
		t.Errorf("log_file = %q, want last.log", d.LogFile)
	}
	if d.Sorted() {
		t.Error("sorting should be off by default")
	}
	if !d.PreservesModTime() {
		t.Error("modification times should be preserved by default")
	}
}
