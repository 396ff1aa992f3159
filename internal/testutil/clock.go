package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a monotonic clock for tests.
//
// The first call to Now returns the start time; every later call advances by
// one second. Two clocks built with the same start produce identical
// timestamps, so ledger output can be compared against golden files.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	ticks int64
}

// NewDeterministicClock creates a clock starting at 2024-03-21T00:00:00Z.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{start: time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)}
}

// Now returns the next timestamp.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.ticks) * time.Second)
	c.ticks++
	return t
}

// Reset rewinds the clock to its start time.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
