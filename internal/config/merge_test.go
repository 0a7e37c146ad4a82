package config

import (
	"strings"
	"testing"
)

func TestMergeScalarsOverlayWins(t *testing.T) {
	base := &Config{Version: 1, LogFile: "base.log", ArgEncoding: "utf-8", SortEntries: boolPtr(true)}
	overlay := &Config{LogFile: "overlay.log", SortEntries: boolPtr(false)}

	merged, err := Merge(base, overlay)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if merged.Version != 1 {
		t.Errorf("version = %d, want 1", merged.Version)
	}
	if merged.LogFile != "overlay.log" {
		t.Errorf("log_file = %q, want overlay.log", merged.LogFile)
	}
	if merged.ArgEncoding != "utf-8" {
		t.Errorf("arg_encoding = %q, base should survive an empty overlay", merged.ArgEncoding)
	}
	if merged.Sorted() {
		t.Error("an explicit false in the overlay should win")
	}
}

func TestMergeUnsetBoolKeepsBase(t *testing.T) {
	base := &Config{PreserveModTime: boolPtr(false)}
	overlay := &Config{}

	merged, err := Merge(base, overlay)
	if err != nil {
		t.Fatal(err)
	}
	if merged.PreservesModTime() {
		t.Error("unset overlay should keep base preserve_mod_time=false")
	}

	*base.PreserveModTime = true
	if merged.PreservesModTime() {
		t.Error("merged config must not alias base pointers")
	}
}

func TestMergeExcludeConcatenates(t *testing.T) {
	base := &Config{Exclude: []string{"*.tmp", "**/.git"}}
	overlay := &Config{Exclude: []string{"build", "*.tmp"}}

	merged, err := Merge(base, overlay)
	if err != nil {
		t.Fatal(err)
	}

	want := "*.tmp,**/.git,build"
	if got := strings.Join(merged.Exclude, ","); got != want {
		t.Errorf("exclude = %q, want %q", got, want)
	}
}

func TestMergeVersionMismatch(t *testing.T) {
	_, err := Merge(&Config{Version: 1}, &Config{Version: 2})
	if err == nil || !strings.Contains(err.Error(), "version mismatch") {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestMergeNil(t *testing.T) {
	cfg := &Config{LogFile: "x.log"}
	if got, _ := Merge(nil, cfg); got != cfg {
		t.Error("nil base should return overlay")
	}
	if got, _ := Merge(cfg, nil); got != cfg {
		t.Error("nil overlay should return base")
	}
}

func TestMergeAll(t *testing.T) {
	merged, err := MergeAll([]*Config{
		Defaults(),
		{Exclude: []string{"a"}},
		{LogFile: "project.log", Exclude: []string{"b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if merged.LogFile != "project.log" {
		t.Errorf("log_file = %q", merged.LogFile)
	}
	if !merged.PreservesModTime() {
		t.Error("default preserve_mod_time should survive")
	}
	if strings.Join(merged.Exclude, ",") != "a,b" {
		t.Errorf("exclude = %v", merged.Exclude)
	}

	if _, err := MergeAll(nil); err == nil {
		t.Error("expected error for empty input")
	}
}
