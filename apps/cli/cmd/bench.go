package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/pagefetch/packages/bench"
	"github.com/abdul-hamid-achik/pagefetch/packages/output"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench <url>",
	Short: "Fetch a page repeatedly and report latency",
	Long: `Fetch the same URL several times, one after another, and print latency
percentiles, the average number of hops and a breakdown of failures.

Examples:
  pagefetch bench https://example.com
  pagefetch bench https://example.com -n 100 --rate 5
  pagefetch bench https://example.com --json`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

var (
	benchRequestsFlag int
	benchRateFlag     float64
	benchJSONFlag     bool
)

func init() {
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", getEnvInt("PAGEFETCH_BENCH_REQUESTS", bench.DefaultRequests), "Number of fetches (env: PAGEFETCH_BENCH_REQUESTS)")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Maximum fetches per second (0 = unlimited)")
	benchCmd.Flags().BoolVar(&benchJSONFlag, "json", false, "Output the summary as JSON")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	runner := bench.NewRunner(newFetcher(s),
		bench.WithRequests(benchRequestsFlag),
		bench.WithRate(benchRateFlag),
		bench.WithLogger(s.log),
	)

	summary, runErr := runner.Run(ctx, args[0])
	if summary == nil {
		return withExitCode(fetchExitCode(runErr), runErr)
	}

	if benchJSONFlag {
		if err := output.NewJSONFormatter(output.JSONWithWriter(s.out)).FormatBench(summary); err != nil {
			return err
		}
	} else {
		output.NewConsoleFormatter(
			output.WithWriter(s.out),
			output.WithNoColor(s.cfg.GetNoColor()),
		).FormatBench(summary)
	}

	if runErr != nil {
		return withExitCode(ExitFetchError, runErr)
	}
	if summary.TotalRequests > 0 && summary.ErrorCount == summary.TotalRequests {
		return withExitCode(ExitFetchError, fmt.Errorf("all %d fetches of %s failed", summary.TotalRequests, summary.URL))
	}
	return nil
}
