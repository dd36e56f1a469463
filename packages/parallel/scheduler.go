// Package parallel provides a fixed-size pool that runs independent tasks
// concurrently. Tasks are submitted with Schedule; Finished stops intake and
// waits for everything already submitted.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/time/rate"
)

var (
	// ErrClosed is returned by Schedule after Finished was called
	ErrClosed = errors.New("scheduler is closed")
	// ErrInterrupted is returned by Finished when its context ends before
	// the submitted tasks do
	ErrInterrupted = errors.New("interrupted while waiting for scheduled tasks")
)

// Scheduler runs at most Workers() tasks at a time
type Scheduler struct {
	sem     chan struct{} // semaphore for max concurrency
	limiter *rate.Limiter

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	errs   []error
}

type Option func(*Scheduler)

// WithRate limits how many tasks may start per second
func WithRate(perSecond float64) Option {
	return func(s *Scheduler) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// New creates a scheduler with the given number of workers. Zero or a
// negative count means one worker per CPU.
func New(workers int, opts ...Option) *Scheduler {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	s := &Scheduler{
		sem: make(chan struct{}, workers),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workers returns the maximum number of tasks running at once
func (s *Scheduler) Workers() int {
	return cap(s.sem)
}

// Schedule submits a task. It does not block.
func (s *Scheduler) Schedule(task func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(task)
	return nil
}

func (s *Scheduler) run(task func()) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	if s.limiter != nil {
		_ = s.limiter.Wait(context.Background())
	}

	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.errs = append(s.errs, fmt.Errorf("task panicked: %v", r))
			s.mu.Unlock()
		}
	}()

	task()
}

// Finished stops accepting tasks and blocks until all submitted tasks have
// returned. If ctx ends first the wait is abandoned and an error wrapping
// ErrInterrupted is returned; callers should treat it as fatal.
func (s *Scheduler) Finished(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}

// Errors returns the panics recovered from tasks so far
func (s *Scheduler) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]error, len(s.errs))
	copy(result, s.errs)
	return result
}
