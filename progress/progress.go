/*
NAME
  progress.go

DESCRIPTION
  progress.go provides Cursor, a process-wide monotonically increasing
  counter pair (step, total) published by long-running operations
  (movie open, analyse, movie-wide min/max, bulk TIFF export) for a
  host UI to observe without locking.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package progress provides a lock-free progress cursor shared
// between a long-running engine operation and a host's observers.
package progress

import "sync/atomic"

// Cursor is a pair of monotonic counters: Step, the number of units
// of work completed, and Total, the number of units expected. Readers
// may observe a transient inconsistency between the two (a dirty
// read) because both values only ever increase within a run.
type Cursor struct {
	step  int64
	total int64
}

// SetTotal publishes the total unit count for the run about to start.
func (c *Cursor) SetTotal(total int) { atomic.StoreInt64(&c.total, int64(total)) }

// SetStep publishes the current step. Callers must call this with a
// strictly increasing sequence of values within a single run.
func (c *Cursor) SetStep(step int) { atomic.StoreInt64(&c.step, int64(step)) }

// Step returns the most recently published step.
func (c *Cursor) Step() int { return int(atomic.LoadInt64(&c.step)) }

// Total returns the most recently published total.
func (c *Cursor) Total() int { return int(atomic.LoadInt64(&c.total)) }

// Reset zeroes both counters, for reuse across successive runs.
func (c *Cursor) Reset() {
	atomic.StoreInt64(&c.step, 0)
	atomic.StoreInt64(&c.total, 0)
}
