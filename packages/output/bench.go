package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/pagefetch/packages/bench"
	"github.com/fatih/color"
)

// FormatBench prints the summary of a bench run
func (f *ConsoleFormatter) FormatBench(summary *bench.Summary) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	fmt.Fprintln(f.writer)
	bold.Fprintf(f.writer, "BENCH %s\n", summary.URL)
	fmt.Fprintln(f.writer, strings.Repeat("─", 40))

	fmt.Fprintf(f.writer, "Duration:   %s\n", formatDuration(summary.Duration))
	fmt.Fprintf(f.writer, "Total:      ")
	bold.Fprintf(f.writer, "%s", formatNumber(summary.TotalRequests))
	fmt.Fprintf(f.writer, " fetches (%.1f/s)\n", summary.RPS)

	fmt.Fprintf(f.writer, "Success:    ")
	green.Fprintf(f.writer, "%s", formatNumber(summary.SuccessCount))
	fmt.Fprintf(f.writer, " (%.1f%%)\n", summary.SuccessRate*100)

	if summary.PartialCount > 0 {
		fmt.Fprintf(f.writer, "Partial:    ")
		yellow.Fprintf(f.writer, "%s\n", formatNumber(summary.PartialCount))
	}

	fmt.Fprintf(f.writer, "Failed:     ")
	if summary.ErrorCount > 0 {
		red.Fprintf(f.writer, "%s", formatNumber(summary.ErrorCount))
	} else {
		fmt.Fprintf(f.writer, "%s", formatNumber(summary.ErrorCount))
	}
	fmt.Fprintf(f.writer, " (%.1f%%)\n", summary.ErrorRate*100)
	fmt.Fprintf(f.writer, "Avg hops:   %.2f\n", summary.AvgHops)

	fmt.Fprintln(f.writer)
	bold.Fprintln(f.writer, "LATENCY (ms)")
	fmt.Fprintf(f.writer, "  p50: %-6s | p95: %-6s | p99: %-6s | max: %s\n",
		formatLatencyMs(summary.P50),
		formatLatencyMs(summary.P95),
		formatLatencyMs(summary.P99),
		formatLatencyMs(summary.Max))
	fmt.Fprintf(f.writer, "  min: %-6s | mean: %-5s | stddev: %s\n",
		formatLatencyMs(summary.Min),
		formatLatencyMs(summary.Mean),
		formatLatencyMs(summary.StdDev))

	if len(summary.ErrorKinds) > 0 {
		fmt.Fprintln(f.writer)
		bold.Fprintln(f.writer, "ERRORS")
		kinds := make([]string, 0, len(summary.ErrorKinds))
		for k := range summary.ErrorKinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(f.writer, "  %s: %s\n", k, formatNumber(summary.ErrorKinds[k]))
		}
	}

	fmt.Fprintln(f.writer)
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// formatLatencyMs formats latency in milliseconds
func formatLatencyMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	if ms < 1 {
		return fmt.Sprintf("%.2f", ms)
	}
	if ms < 10 {
		return fmt.Sprintf("%.1f", ms)
	}
	return fmt.Sprintf("%.0f", ms)
}

// formatNumber formats a number with commas
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+(len(s)-1)/3)

	start := len(s) % 3
	if start == 0 {
		start = 3
	}

	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}

	return string(result)
}
