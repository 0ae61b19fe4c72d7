// Package analysis summarizes the step series of a run.
//
//   - [Summarize]: count, mean, spread, extremes and quantiles of one series
//   - [DominantPeriod]: strongest periodic component, e.g. of bouncing contacts
//   - [Correlate]: Pearson correlation between two series
//
// # Example
//
//	rec := &metrics.Recorder{}
//	world.AddObserver(rec)
//	_ = world.Run(ctx, 500, nil)
//	s := analysis.Summarize("collisions", rec.Series("collisions"))
package analysis
