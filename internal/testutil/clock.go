package testutil

import (
	"sync"
	"time"
)

// Epoch is the default starting instant of a FakeClock: 2024-01-01T00:00:00Z.
var Epoch = time.Unix(1_704_067_200, 0)

// FakeClock is a settable wall clock for tests.
//
// Its Now method has the signature of time.Now so it can be injected
// wherever a clock function is accepted. Time only moves when Advance or Set
// is called.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock reading start. A zero start means Epoch.
func NewFakeClock(start time.Time) *FakeClock {
	if start.IsZero() {
		start = Epoch
	}
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Unix returns the current fake time in Unix seconds.
func (c *FakeClock) Unix() int64 {
	return c.Now().Unix()
}

// Advance moves the clock forward by d. A negative d moves it back.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Days is a convenience for building day-scale durations.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
