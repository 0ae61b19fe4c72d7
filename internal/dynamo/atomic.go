package dynamo

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 supporting concurrent Add. The zero value is 0.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

func (f *AtomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *AtomicFloat64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Add adds delta and returns the new value.
func (f *AtomicFloat64) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Swap stores v and returns the previous value.
func (f *AtomicFloat64) Swap(v float64) float64 {
	return math.Float64frombits(f.bits.Swap(math.Float64bits(v)))
}
