// Package dynamo provides the execution primitives shared by the cell physics.
//
// The package defines:
//
//   - [Pool]: barriered parallel-for over index ranges; every call to [Pool.For]
//     returns only after all chunks have finished, so consecutive calls form
//     strictly ordered phases
//   - [AtomicFloat64]: lock-free float accumulator used for impulse sums
//   - [Ensemble]: runs independent jobs concurrently with a bounded fan-out
//   - domain error sentinels checked with errors.Is
//
// # Example
//
//	pool := dynamo.NewPool(0, 256)
//	pool.For(len(cells), func(start, end int) {
//		for i := start; i < end; i++ {
//			// one logical thread per cell
//		}
//	})
//	// every write above is visible here
//
// # Thread Safety
//
// Pool is safe to share between goroutines but phases issued from different
// goroutines are not ordered with respect to each other.
package dynamo
