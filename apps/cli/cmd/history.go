package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/pagefetch/packages/archive"
	"github.com/abdul-hamid-achik/pagefetch/packages/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived pages, newest first",
	Long: `List pages saved with --archive.

Examples:
  pagefetch history --archive sqlite://history.db
  pagefetch history --archive bolt://history.bolt --limit 5 -v
  PAGEFETCH_ARCHIVE=sqlite://history.db pagefetch history --json`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

var (
	historyLimitFlag int
	historyJSONFlag  bool
)

var errNoArchive = errors.New("no archive configured, set --archive or PAGEFETCH_ARCHIVE")

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", archive.DefaultListLimit, "Maximum number of pages to list")
	historyCmd.Flags().BoolVar(&historyJSONFlag, "json", false, "Output the history as JSON")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if s.cfg.Archive == "" {
		return withExitCode(ExitUsageError, errNoArchive)
	}

	ctx := cmd.Context()

	store, err := archive.Open(s.cfg.Archive)
	if err != nil {
		return withExitCode(ExitArchiveError, err)
	}
	defer store.Close()

	records, err := store.List(ctx, historyLimitFlag)
	if err != nil {
		return withExitCode(ExitArchiveError, err)
	}

	var formatter output.Formatter
	if historyJSONFlag {
		formatter = output.NewJSONFormatter(output.JSONWithWriter(s.out))
	} else {
		formatter = output.NewConsoleFormatter(
			output.WithWriter(s.out),
			output.WithVerbose(s.cfg.GetVerbose()),
			output.WithNoColor(s.cfg.GetNoColor()),
		)
	}
	formatter.FormatHistory(records)
	return nil
}
