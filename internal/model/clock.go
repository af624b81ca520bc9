package model

import "sync/atomic"

// Clock hands out statement sequence numbers.
//
// Statements are ordered by seq, never by wall time, so a session replayed
// from the same inputs logs the same sequence. A session peeks at
// Current()+1 and calls Next only once the statement is stored, so a clock
// belongs to one session.
type Clock interface {
	Next() int64
	Current() int64
}

// LogicalClock is a monotonic counter. It is safe for concurrent use.
type LogicalClock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *LogicalClock {
	return &LogicalClock{}
}

// NewClockAt creates a clock that continues after start. Used to resume a
// session whose log already holds statements up to start.
func NewClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
