// Package testutil holds deterministic stand-ins for the time- and
// randomness-dependent parts of optchain: the trace sequencer and run IDs.
package testutil

import "sync"

// DeterministicClock is a resettable logical clock for builder traces.
//
// It satisfies engine.Sequencer. The harness gives every scenario its own
// clock so each golden trace starts at seq 1. Reset lets a test replay a
// builder on the same engine and compare the two traces.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	seq   int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// NewDeterministicClockAt creates a clock whose first Next returns start+1.
// Reset returns it to start.
func NewDeterministicClockAt(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, seq: start}
}

// Next advances the clock and returns the new value.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last value handed out, without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to its starting value.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = c.start
}
