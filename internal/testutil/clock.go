package testutil

import (
	"sync"
	"time"
)

// Epoch is the first capture time handed out by a DeterministicClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock hands out capture timestamps one hour apart, starting
// at Epoch, so fixture files get distinct, reproducible timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock whose first Next returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{seq: 0}
}

// Next returns the current timestamp and advances the clock.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.at(c.seq)
	c.seq++
	return ts
}

// Current returns the timestamp the next call to Next will return.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at(c.seq)
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

func (c *DeterministicClock) at(seq int64) time.Time {
	return Epoch.Add(time.Duration(seq) * time.Hour)
}
