package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/dirmirror/internal/pathenc"
	"github.com/bianoble/dirmirror/pkg/dirmirror"
)

func runMirror(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dec, err := pathenc.NewDecoder(cfg.ArgEncoding)
	if err != nil {
		return err
	}
	// Decoded only; Run resolves them and logs the source as typed.
	src, err := dec.Decode(args[0])
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dst, err := dec.Decode(args[1])
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	result, err := dirmirror.Run(cmd.Context(), dirmirror.Options{
		Source:            src,
		Destination:       dst,
		LogFile:           cfg.LogFile,
		DryRun:            dryRun,
		SortEntries:       cfg.Sorted(),
		NoPreserveModTime: !cfg.PreservesModTime(),
		Exclude:           cfg.Exclude,
		Logger:            newDiagLogger(),
	})
	if result != nil {
		printResult(result)
		if summaryPath != "" {
			if serr := result.SaveSummary(summaryPath); serr != nil {
				errorf("writing summary: %v", serr)
			} else {
				detail("summary: %s", summaryPath)
			}
		}
	}
	return err
}

func printResult(r *dirmirror.Result) {
	if r.DryRun {
		info("Dry run, nothing copied.")
	}
	for _, f := range r.Failures {
		detail("FAILED  %s  %s", f.Dest, f.Reason)
	}

	verb := "copied"
	if r.DryRun {
		verb = "to copy"
	}
	info("%s -> %s: %d %s, %d up to date, %d failed, %d excluded (log: %s, %d lines)",
		r.Source, r.Destination, r.Copied, verb, r.UpToDate,
		r.FailedCopies+r.FailedDirectories, r.Excluded, r.LogFile, r.LogLines)
	if r.EnumerationErrors > 0 {
		info("%d directories could not be listed", r.EnumerationErrors)
	}
}
