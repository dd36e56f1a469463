package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pagefetch <url>",
	Short: "Fetch a web page, following redirects by hand.",
	Long: `pagefetch downloads a page over HTTP or HTTPS. Redirects are followed
one hop at a time and every Set-Cookie received along the way is sent on
the following hops. The body is decoded using the charset named by the
final response and streamed to the log line by line.

Examples:
  pagefetch https://example.com
  pagefetch https://example.com -o raw --line-breaks
  pagefetch https://api.example.com/user -o raw --json-path user.name
  pagefetch https://example.com --selector "h1" --archive sqlite://history.db`,
	Args:          cobra.ExactArgs(1),
	RunE:          fetchCommand,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit code for an error
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to the process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra argument and flag errors
	return ExitUsageError
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	registerCommonFlags(rootCmd)
	registerFetchFlags(rootCmd)

	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
