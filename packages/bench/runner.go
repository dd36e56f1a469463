// Package bench fetches one URL repeatedly and reports latency percentiles.
//
// Fetches run one after another on the calling goroutine; an optional rate
// limit spaces them out.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
	"golang.org/x/time/rate"
)

// DefaultRequests is the number of fetches when none is configured
const DefaultRequests = 10

// Runner drives a bench run
type Runner struct {
	fetcher  *fetch.Fetcher
	requests int
	limiter  *rate.Limiter
	log      *slog.Logger
}

type Option func(*Runner)

// WithRequests sets how many fetches to make
func WithRequests(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.requests = n
		}
	}
}

// WithRate caps fetches per second. Zero means as fast as possible.
func WithRate(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

func NewRunner(f *fetch.Fetcher, opts ...Option) *Runner {
	r := &Runner{
		fetcher:  f,
		requests: DefaultRequests,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches rawURL the configured number of times. An invalid URL fails
// immediately. When ctx ends, the summary of the fetches made so far is
// returned along with ctx's error.
func (r *Runner) Run(ctx context.Context, rawURL string) (*Summary, error) {
	metrics := NewMetrics()
	metrics.Start()

	var runErr error
	for i := 0; i < r.requests; i++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		start := time.Now()
		page, err := r.fetcher.Fetch(ctx, rawURL)
		elapsed := time.Since(start)

		if errors.Is(err, fetch.ErrInvalidArgument) {
			return nil, err
		}

		hops := 0
		partial := false
		if page != nil {
			hops = len(page.Hops)
			partial = page.Outcome == fetch.Partial
		}
		metrics.Record(elapsed, hops, partial, err)

		if err != nil {
			r.log.DebugContext(ctx, "bench fetch failed", "iteration", i+1, "error", err)
		}
	}

	metrics.Stop()
	summary := metrics.GetSummary()
	summary.URL = rawURL

	if runErr != nil {
		return summary, fmt.Errorf("bench interrupted after %d fetches: %w", summary.TotalRequests, runErr)
	}
	return summary, nil
}

// classify names the kind of a fetch error for the summary breakdown
func classify(err error) string {
	var statusErr *fetch.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("status %d", statusErr.StatusCode)
	case errors.Is(err, fetch.ErrTooManyRedirects):
		return "too many redirects"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, fetch.ErrIO):
		return "io"
	default:
		return "other"
	}
}
