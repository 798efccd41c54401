package engine

import "sync/atomic"

// Sequencer stamps trace events. testutil.DeterministicClock satisfies it
// for tests that reset between runs.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock for trace ordering. Wall-clock time is
// never used: replaying the same calls yields the same sequence numbers.
//
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number. The first call returns 1.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
