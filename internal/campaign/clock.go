package campaign

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Phase decisions never read
// time.Now directly so they can be tested at exact boundaries.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a settable clock for tests and replay tooling.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
