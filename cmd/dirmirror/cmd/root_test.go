package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/bianoble/dirmirror/internal/config"
	"github.com/bianoble/dirmirror/internal/report"
	"github.com/bianoble/dirmirror/pkg/dirmirror"
)

// resetFlags restores every flag to its default between command runs.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv("DIRMIRROR_NO_INHERIT", "1")
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Value.Type() != "stringArray" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	excludes = nil
	quiet = true
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func makeSource(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(dir, "src")
	for _, rel := range []string{"a.txt", "skip.tmp", filepath.Join("sub", "b.txt")} {
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func TestWrongArgumentCountPrintsUsage(t *testing.T) {
	resetFlags(t)
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	defer rootCmd.SetErr(nil)

	for _, args := range [][]string{nil, {"one"}, {"one", "two", "three"}} {
		stderr.Reset()
		err := execute(t, args...)
		if !errors.Is(err, errUsage) {
			t.Errorf("%v: err = %v, want errUsage", args, err)
		}
		for _, want := range []string{
			"USAGE: dirmirror SOURCE_DIRECTORY DESTINATION_DIRECTORY",
			"SOURCE DIRECTORY:         The path of the directory to copy from",
			"DESTINATION DIRECTORY:    The path of the directory to copy to",
		} {
			if !strings.Contains(stderr.String(), want) {
				t.Errorf("%v: usage is missing %q, stderr = %q", args, want, stderr.String())
			}
		}
	}
}

func TestMirrorCommand(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	src := makeSource(t, dir)
	dst := filepath.Join(dir, "dst")
	logPath := filepath.Join(dir, "run.log")

	if err := execute(t, "--log-file", logPath, "--exclude", "*.tmp", src, dst); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "sub", "b.txt")); err != nil {
		t.Errorf("mirrored file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "skip.tmp")); !os.IsNotExist(err) {
		t.Error("excluded file was copied")
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("log has %d lines, want 2:\n%s", got, data)
	}
}

func TestMirrorCommandUsesConfigFile(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	src := makeSource(t, dir)
	dst := filepath.Join(dir, "dst")
	logPath := filepath.Join(dir, "from-config.log")

	cfgPath := filepath.Join(dir, config.DefaultFileName)
	cfg := "version: 1\nlog_file: " + logPath + "\nexclude:\n  - sub\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "--config", cfgPath, src, dst); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log_file from config not used: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "sub")); !os.IsNotExist(err) {
		t.Error("excluded directory was mirrored")
	}
	if _, err := os.Stat(filepath.Join(dst, "skip.tmp")); err != nil {
		t.Errorf("unexcluded file missing: %v", err)
	}
}

func TestMirrorCommandMissingExplicitConfig(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	err := execute(t, "--config", filepath.Join(dir, "absent.yaml"), makeSource(t, dir), filepath.Join(dir, "dst"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestMirrorCommandMissingSource(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	err := execute(t, "--log-file", filepath.Join(dir, "last.log"), filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if !errors.Is(err, dirmirror.ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}
}

func TestMirrorCommandWritesSummary(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	src := makeSource(t, dir)
	summary := filepath.Join(dir, "summary.yaml")

	err := execute(t, "--log-file", filepath.Join(dir, "last.log"), "--summary", summary, "--dry-run", src, filepath.Join(dir, "dst"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	s, err := report.Load(summary)
	if err != nil {
		t.Fatalf("report.Load: %v", err)
	}
	if !s.DryRun || s.Copied != 3 {
		t.Errorf("summary = %+v", s)
	}
	if _, err := os.Stat(filepath.Join(dir, "dst")); !os.IsNotExist(err) {
		t.Error("dry run created the destination")
	}
}

func TestMirrorCommandDecodesArguments(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "café")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "f.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	latin1Src := filepath.Join(dir, "caf\xe9")
	dst := filepath.Join(dir, "dst")
	err := execute(t, "--arg-encoding", "windows-1252", "--log-file", filepath.Join(dir, "last.log"), latin1Src, dst)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "f.txt")); err != nil {
		t.Errorf("decoded source was not mirrored: %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	resetFlags(t)
	if err := rootCmd.ParseFlags([]string{"--sort", "--no-preserve-mtime", "--log-file", "x.log", "--exclude", "a", "--exclude", "b"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.Exclude = []string{"base"}
	applyFlags(rootCmd, cfg)

	if !cfg.Sorted() {
		t.Error("--sort not applied")
	}
	if cfg.PreservesModTime() {
		t.Error("--no-preserve-mtime not applied")
	}
	if cfg.LogFile != "x.log" {
		t.Errorf("log_file = %q", cfg.LogFile)
	}
	if strings.Join(cfg.Exclude, ",") != "base,a,b" {
		t.Errorf("exclude = %v", cfg.Exclude)
	}

	resetFlags(t)
	cfg = config.Defaults()
	applyFlags(rootCmd, cfg)
	if cfg.LogFile != "last.log" || cfg.Sorted() || !cfg.PreservesModTime() {
		t.Errorf("unset flags changed the config: %+v", cfg)
	}
}
