package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bianoble/dirmirror/internal/config"
)

// loadConfig merges the system, user and project config layers and applies
// command line flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", configPath)
		}
	}

	cfg, layers, err := config.LoadLayers(config.DiscoverOptions{
		ProjectPath: configPath,
		NoInherit:   config.EnvNoInherit(),
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	for _, l := range layers {
		if l.Loaded {
			detail("config: %s (%s)", l.Path, l.Level)
		}
	}

	applyFlags(cmd, cfg)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, &config.ValidationError{Errors: errs}
	}
	return cfg, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("arg-encoding") {
		cfg.ArgEncoding = argEncoding
	}
	if flags.Changed("sort") {
		cfg.SortEntries = &sortEntries
	}
	if flags.Changed("no-preserve-mtime") {
		preserve := !noPreserveMtime
		cfg.PreserveModTime = &preserve
	}
	cfg.Exclude = append(cfg.Exclude, excludes...)
}

// newDiagLogger returns the stderr logger for diagnostics that do not belong
// in the run log.
func newDiagLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
