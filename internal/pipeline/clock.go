package pipeline

import "sync/atomic"

// Clock is the monotonic tick counter.
//
// Ticks order everything the orchestrator does; wall-clock time is never used
// for ordering. Safe for concurrent reads, though only the Runner advances it.
type Clock struct {
	tick atomic.Int64
}

// NewClock creates a clock at tick 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.tick.Store(start)
	return c
}

// Next advances the clock and returns the new tick.
func (c *Clock) Next() int64 {
	return c.tick.Add(1)
}

// Current returns the current tick without advancing.
func (c *Clock) Current() int64 {
	return c.tick.Load()
}
