package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bianoble/dirmirror/internal/config"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usageText = `
USAGE: dirmirror SOURCE_DIRECTORY DESTINATION_DIRECTORY

	SOURCE DIRECTORY:         The path of the directory to copy from
	DESTINATION DIRECTORY:    The path of the directory to copy to
`

// errUsage is returned after the usage text has already been printed.
var errUsage = errors.New("wrong number of arguments")

// Global flags.
var (
	configPath      string
	logFile         string
	summaryPath     string
	argEncoding     string
	excludes        []string
	sortEntries     bool
	noPreserveMtime bool
	dryRun          bool
	verbose         bool
	quiet           bool
)

var rootCmd = &cobra.Command{
	Use:   "dirmirror [flags] SOURCE_DIRECTORY DESTINATION_DIRECTORY",
	Short: "Additive one-way directory mirror",
	Long: `dirmirror copies every file under SOURCE_DIRECTORY into the same relative
location under DESTINATION_DIRECTORY when the destination copy is missing or
older than the source. Nothing in the destination is ever deleted.

Each copy and each failure is written as one line to a run log (last.log in
the working directory by default), which is recreated on every run.`,
	Args:          exactTwoArgs,
	RunE:          runMirror,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("dirmirror %s\n  commit:  %s\n  built:   %s\n", version, commit, date))

	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultFileName, "path to config file")
	flags.StringVar(&logFile, "log-file", "", "run log path (default \"last.log\")")
	flags.StringVar(&summaryPath, "summary", "", "write a YAML run summary to this path")
	flags.StringVar(&argEncoding, "arg-encoding", "", "charset of SOURCE and DESTINATION (default UTF-8)")
	flags.StringArrayVar(&excludes, "exclude", nil, "skip entries matching this pattern (repeatable)")
	flags.BoolVar(&sortEntries, "sort", false, "visit directory entries in lexical order")
	flags.BoolVar(&noPreserveMtime, "no-preserve-mtime", false, "stamp copies with the copy time")
	flags.BoolVar(&dryRun, "dry-run", false, "report what would be copied without copying")
	flags.BoolVar(&verbose, "verbose", false, "detailed output")
	flags.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
}

// exactTwoArgs prints the usage text to stderr for any other argument count.
func exactTwoArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(cmd.ErrOrStderr(), usageText)
		return errUsage
	}
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM stop the walk between
// entries; the run log is still closed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errUsage) {
			errorf("%v", err)
		}
		return err
	}
	return nil
}
