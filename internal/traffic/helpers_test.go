package traffic

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock only moves when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingRecorder tallies recorder events.
type countingRecorder struct {
	bytes    atomic.Int64
	passes   atomic.Int64
	failures atomic.Int64
	rates    atomic.Int64
	active   atomic.Int64
	started  atomic.Int64
}

func (r *countingRecorder) AddBytes(_ Mode, n int64) { r.bytes.Add(n) }

func (r *countingRecorder) ObserveRate(Mode, int64) { r.rates.Add(1) }

func (r *countingRecorder) PassCompleted(_ Mode, err error) {
	r.passes.Add(1)
	if err != nil {
		r.failures.Add(1)
	}
}

func (r *countingRecorder) WorkerStarted(Mode) {
	r.started.Add(1)
	r.active.Add(1)
}

func (r *countingRecorder) WorkerStopped(Mode) { r.active.Add(-1) }

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
