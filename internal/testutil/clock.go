package testutil

import (
	"sync"
	"time"
)

// SteppingClock is a deterministic wall clock for tests.
//
// Each call to Now returns the start time advanced by one more step, so
// recorded timestamps are reproducible across runs and golden comparisons.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewSteppingClock creates a clock whose first Now() returns start.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{start: start.UTC(), step: step}
}

// Now returns the next instant and advances the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Calls returns how many times Now has been called.
func (c *SteppingClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next Now() returns start again.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
