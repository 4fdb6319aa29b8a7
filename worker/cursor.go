// Package worker implements the correction worker pool: a shared,
// monotonically increasing anchor-id cursor handed out in batches to a
// fixed set of workers, and a batch-boundary abort flag.
package worker

import "sync"

// Cursor is the sole shared mutable state on the anchor-id hot path
// besides the correction-flags bitmap and each worker's own output file.
// NextBatch's mutex is the only contention point; every other part of
// an anchor's pipeline runs lock-free from the worker's perspective.
type Cursor struct {
	mu   sync.Mutex
	next uint32
	n    uint32
}

// NewCursor creates a Cursor ranging over anchor ids [0, n).
func NewCursor(n uint32) *Cursor {
	return &Cursor{n: n}
}

// NextBatch advances the cursor by up to batchSize ids and returns the
// claimed range [lo, hi). ok is false once the cursor is exhausted.
func (c *Cursor) NextBatch(batchSize int) (lo, hi uint32, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= c.n {
		return 0, 0, false
	}
	lo = c.next
	hi = lo + uint32(batchSize)
	if hi > c.n {
		hi = c.n
	}
	c.next = hi
	return lo, hi, true
}
