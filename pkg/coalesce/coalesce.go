// Package coalesce bounds the frequency of expensive operations by folding
// bursts of trigger calls into a single trailing execution per interval.
package coalesce

import (
	"sync"
	"time"
)

// Coalescer executes at most one call per interval. A call arriving inside the
// interval replaces any pending call and runs when the interval elapses, so the
// latest call always wins and the last call in a burst is never lost.
type Coalescer struct {
	mu       sync.Mutex
	interval time.Duration
	lastRun  time.Time
	timer    *time.Timer
	pending  func()
	stopped  bool
}

// New creates a Coalescer with the given minimum interval between executions.
// A non-positive interval disables coalescing: every call runs immediately.
func New(interval time.Duration) *Coalescer {
	return &Coalescer{interval: interval}
}

// Do requests execution of fn. If the interval since the previous execution has
// elapsed, fn runs synchronously on the caller's goroutine. Otherwise fn is
// stored as the pending trailing call, replacing any previously pending one,
// and runs on a timer goroutine when the interval boundary passes.
func (c *Coalescer) Do(fn func()) {
	if fn == nil {
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	now := time.Now()
	if c.interval <= 0 || c.lastRun.IsZero() || now.Sub(c.lastRun) >= c.interval {
		c.lastRun = now
		c.mu.Unlock()
		fn()
		return
	}

	c.pending = fn
	if c.timer == nil {
		wait := c.interval - now.Sub(c.lastRun)
		c.timer = time.AfterFunc(wait, c.fireTrailing)
	}
	c.mu.Unlock()
}

// fireTrailing runs the pending call, if still present, at the interval boundary.
func (c *Coalescer) fireTrailing() {
	c.mu.Lock()
	fn := c.pending
	c.pending = nil
	c.timer = nil
	if fn != nil && !c.stopped {
		c.lastRun = time.Now()
	}
	stopped := c.stopped
	c.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Flush runs any pending trailing call immediately and cancels its timer.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	fn := c.pending
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if fn != nil {
		c.lastRun = time.Now()
	}
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending call. Subsequent Do calls are ignored.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Pending reports whether a trailing call is waiting to run.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}
