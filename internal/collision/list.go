// Package collision holds the per-step list of contended cell claims.
package collision

import (
	"fmt"
	"sync/atomic"

	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
)

// Record is one losing claim: the source cell whose content tried to move
// into Dest after another source had already won it this step.
type Record struct {
	Source grid.IVec2
	Dest   grid.IVec2
}

// List is a fixed-capacity array appended to concurrently through an atomic
// index. The index keeps counting past capacity so overflow is visible on
// readback instead of being truncated away.
type List struct {
	records []Record
	next    atomic.Int64
}

func New(capacity int) *List {
	return &List{records: make([]Record, capacity)}
}

func (l *List) Capacity() int { return len(l.records) }

// Reset empties the list. Not safe to call concurrently with Append.
func (l *List) Reset() {
	l.next.Store(0)
}

// Append reserves the next slot and writes r into it. It returns false when
// the slot lies beyond capacity; the count is still incremented.
func (l *List) Append(r Record) bool {
	i := l.next.Add(1) - 1
	if i >= int64(len(l.records)) {
		return false
	}
	l.records[i] = r
	return true
}

// Count is the number of appends since Reset, including rejected ones.
func (l *List) Count() int {
	return int(l.next.Load())
}

func (l *List) Overflowed() bool {
	return l.Count() > len(l.records)
}

// Records returns the written prefix. Valid only after the appending phase
// has joined and Check returned nil.
func (l *List) Records() []Record {
	n := l.Count()
	if n > len(l.records) {
		n = len(l.records)
	}
	return l.records[:n]
}

// Check is the readback: it fails if any append was rejected.
func (l *List) Check() error {
	if n := l.Count(); n > len(l.records) {
		return &OverflowError{Count: n, Capacity: len(l.records)}
	}
	return nil
}

// OverflowError reports a step whose contended claims exceeded capacity.
type OverflowError struct {
	Count    int
	Capacity int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("collision list overflow: %d records, capacity %d", e.Count, e.Capacity)
}

func (e *OverflowError) Unwrap() error {
	return dynamo.ErrCollisionOverflow
}
