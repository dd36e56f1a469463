package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/pagefetch/packages/archive"
	"github.com/abdul-hamid-achik/pagefetch/packages/bench"
	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
)

// JSONOutput is the document written for one fetch
type JSONOutput struct {
	Page      *fetch.Page `json:"page,omitempty"`
	Redirects int         `json:"redirects"`
	Error     string      `json:"error,omitempty"`
	Time      string      `json:"time"`
}

// JSONBench is the document written for a bench run
type JSONBench struct {
	URL      string           `json:"url"`
	Duration string           `json:"duration"`
	Requests JSONBenchCounts  `json:"requests"`
	Latency  map[string]int64 `json:"latency"` // microseconds
	RPS      float64          `json:"rps"`
	AvgHops  float64          `json:"avgHops"`
	Errors   map[string]int64 `json:"errors,omitempty"`
}

type JSONBenchCounts struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Partial int64 `json:"partial"`
	Failed  int64 `json:"failed"`
}

// JSONFormatter writes results as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *JSONFormatter) FormatPage(page *fetch.Page, err error) {
	out := JSONOutput{
		Page: page,
		Time: time.Now().Format(time.RFC3339),
	}
	if page != nil {
		out.Redirects = page.Redirects()
	}
	if err != nil {
		out.Error = err.Error()
	}
	_ = f.encode(out)
}

func (f *JSONFormatter) FormatHistory(records []archive.Record) {
	_ = f.encode(records)
}

func (f *JSONFormatter) FormatBench(summary *bench.Summary) error {
	return f.encode(JSONBench{
		URL:      summary.URL,
		Duration: summary.Duration.String(),
		Requests: JSONBenchCounts{
			Total:   summary.TotalRequests,
			Success: summary.SuccessCount,
			Partial: summary.PartialCount,
			Failed:  summary.ErrorCount,
		},
		Latency: map[string]int64{
			"p50":    summary.P50.Microseconds(),
			"p95":    summary.P95.Microseconds(),
			"p99":    summary.P99.Microseconds(),
			"min":    summary.Min.Microseconds(),
			"max":    summary.Max.Microseconds(),
			"mean":   summary.Mean.Microseconds(),
			"stddev": summary.StdDev.Microseconds(),
		},
		RPS:     summary.RPS,
		AvgHops: summary.AvgHops,
		Errors:  summary.ErrorKinds,
	})
}

func (f *JSONFormatter) FormatError(err error) {
	_ = f.encode(JSONOutput{
		Error: err.Error(),
		Time:  time.Now().Format(time.RFC3339),
	})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}
