package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/pagefetch/packages/archive"
	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
	"github.com/fatih/color"
)

// truncate shortens s to maxLen runes, marking the cut
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(code int) func(a ...interface{}) string {
	switch {
	case code >= 400:
		return color.New(color.FgRed).SprintFunc()
	case code >= 300:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

// FormatPage prints the redirect chain of page followed by a summary. A
// page is nil when the fetch failed before a body was available.
func (f *ConsoleFormatter) FormatPage(page *fetch.Page, err error) {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if page == nil {
		f.FormatError(err)
		return
	}

	fmt.Fprintf(f.writer, "\n%s\n", bold("Fetched: "+page.OriginURL))

	for i, hop := range page.Hops {
		status := statusColor(hop.StatusCode)
		fmt.Fprintf(f.writer, "  %d. %s %s %s\n", i+1, status(hop.StatusCode), hop.URL,
			cyan(fmt.Sprintf("(%dms)", hop.Duration.Milliseconds())))
		if hop.Location != "" {
			fmt.Fprintf(f.writer, "     %s %s\n", yellow("→"), hop.Location)
		}
	}

	if f.verbose && len(page.Cookies) > 0 {
		fmt.Fprintf(f.writer, "  Cookies:\n")
		for _, c := range page.Cookies {
			fmt.Fprintf(f.writer, "    %s\n", c.String())
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Final:     %s\n", page.FinalURL)
	fmt.Fprintf(f.writer, "Redirects: %d\n", page.Redirects())
	fmt.Fprintf(f.writer, "Charset:   %s\n", page.Charset)
	fmt.Fprintf(f.writer, "Body:      %d chars", len([]rune(page.Body)))
	if page.Outcome == fetch.Partial {
		fmt.Fprintf(f.writer, " %s", yellow("(partial)"))
	}
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Time:      %dms\n", page.Duration().Milliseconds())

	if err != nil {
		fmt.Fprintf(f.writer, "%s %v\n", red("Warning:"), err)
	}
	fmt.Fprintf(f.writer, "\n")
}

// FormatHistory prints archived fetches, one per line
func (f *ConsoleFormatter) FormatHistory(records []archive.Record) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if len(records) == 0 {
		fmt.Fprintf(f.writer, "No archived pages\n")
		return
	}

	fmt.Fprintf(f.writer, "%s\n", bold(fmt.Sprintf("%d archived pages", len(records))))
	for _, rec := range records {
		status := statusColor(rec.StatusCode)
		fmt.Fprintf(f.writer, "  %s %s %s", dim(rec.FetchedAt.Local().Format("2006-01-02 15:04:05")), status(rec.StatusCode), rec.OriginURL)
		if rec.FinalURL != rec.OriginURL {
			fmt.Fprintf(f.writer, " → %s", rec.FinalURL)
		}
		fmt.Fprintf(f.writer, "\n")
		if f.verbose {
			fmt.Fprintf(f.writer, "    %s %s\n", dim(rec.ID), truncate(strings.TrimSpace(rec.Body), 80))
		}
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("pagefetch"), version)
}
