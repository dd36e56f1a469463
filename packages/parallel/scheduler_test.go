package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultWorkers(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), New(0).Workers())
	assert.Equal(t, runtime.NumCPU(), New(-3).Workers())
	assert.Equal(t, 4, New(4).Workers())
}

func TestScheduler_RunsAllTasks(t *testing.T) {
	s := New(3)

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Schedule(func() {
			count.Add(1)
		}))
	}

	require.NoError(t, s.Finished(context.Background()))
	assert.Equal(t, int32(50), count.Load())
}

func TestScheduler_CapsConcurrency(t *testing.T) {
	const workers = 2
	s := New(workers)

	var running, peak atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Schedule(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		}))
	}

	require.NoError(t, s.Finished(context.Background()))
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestScheduler_RejectsAfterFinished(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Finished(context.Background()))

	err := s.Schedule(func() {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestScheduler_FinishedInterrupted(t *testing.T) {
	s := New(1)
	release := make(chan struct{})
	defer close(release)

	require.NoError(t, s.Schedule(func() {
		<-release
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Finished(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := New(2)

	var ran atomic.Bool
	require.NoError(t, s.Schedule(func() { panic("boom") }))
	require.NoError(t, s.Schedule(func() { ran.Store(true) }))

	require.NoError(t, s.Finished(context.Background()))
	assert.True(t, ran.Load())

	errs := s.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "boom")
}

func TestScheduler_WithRate(t *testing.T) {
	s := New(4, WithRate(50)) // one start every 20ms

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Schedule(func() {}))
	}
	require.NoError(t, s.Finished(context.Background()))

	// first start is immediate, the other three wait ~20ms each
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
