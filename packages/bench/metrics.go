package bench

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// latency bounds in microseconds: 1us to 60s
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics collects the outcome of every fetch in a bench run
type Metrics struct {
	mu sync.Mutex

	total   int64
	success int64
	partial int64
	errors  int64
	hops    int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram

	errorKinds map[string]int64

	startTime time.Time
	endTime   time.Time
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		histogram:  hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		errorKinds: make(map[string]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
}

// Record records one fetch. hops is the number of exchanges made, including
// the final one. A partial page counts as a success with its own tally.
func (m *Metrics) Record(duration time.Duration, hops int, partial bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.hops += int64(hops)

	switch {
	case err != nil && !partial:
		m.errors++
		m.errorKinds[classify(err)]++
	case partial:
		m.success++
		m.partial++
	default:
		m.success++
	}

	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}
	_ = m.histogram.RecordValue(latencyUs)
}

// Summary is the final report of a bench run
type Summary struct {
	URL      string
	Duration time.Duration

	TotalRequests int64
	SuccessCount  int64
	PartialCount  int64
	ErrorCount    int64
	ErrorKinds    map[string]int64

	RPS         float64
	SuccessRate float64
	ErrorRate   float64
	AvgHops     float64

	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	summary := &Summary{
		Duration:      duration,
		TotalRequests: m.total,
		SuccessCount:  m.success,
		PartialCount:  m.partial,
		ErrorCount:    m.errors,
		ErrorKinds:    make(map[string]int64, len(m.errorKinds)),
		P50:           usToDuration(m.histogram.ValueAtQuantile(50)),
		P95:           usToDuration(m.histogram.ValueAtQuantile(95)),
		P99:           usToDuration(m.histogram.ValueAtQuantile(99)),
		Min:           usToDuration(m.histogram.Min()),
		Max:           usToDuration(m.histogram.Max()),
		Mean:          time.Duration(m.histogram.Mean() * float64(time.Microsecond)),
		StdDev:        time.Duration(m.histogram.StdDev() * float64(time.Microsecond)),
	}
	for k, v := range m.errorKinds {
		summary.ErrorKinds[k] = v
	}

	if duration.Seconds() > 0 {
		summary.RPS = float64(m.total) / duration.Seconds()
	}
	if m.total > 0 {
		summary.SuccessRate = float64(m.success) / float64(m.total)
		summary.ErrorRate = float64(m.errors) / float64(m.total)
		summary.AvgHops = float64(m.hops) / float64(m.total)
	}

	return summary
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
