package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool splits index ranges into chunks and runs them on goroutines, joining
// before it returns.
type Pool struct {
	workers  int
	minChunk int
}

// NewPool creates a pool. workers <= 0 uses GOMAXPROCS; minChunk <= 0 uses 64.
func NewPool(workers, minChunk int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk <= 0 {
		minChunk = 64
	}
	return &Pool{workers: workers, minChunk: minChunk}
}

func (p *Pool) Workers() int { return p.workers }

// For executes fn over [0, n) in parallel chunks and waits for all of them.
func (p *Pool) For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := p.workers
	if n/p.minChunk < workers {
		workers = n / p.minChunk
	}
	if n <= p.minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			fn(s, e)
			return nil
		})
	}
	_ = g.Wait()
}

// Ensemble runs independent jobs with at most limit in flight and returns the
// first error.
type Ensemble struct {
	limit int
}

func NewEnsemble(limit int) *Ensemble {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{limit: limit}
}

func (e *Ensemble) Run(ctx context.Context, n int, job func(ctx context.Context, idx int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < n; i++ {
		idx := i
		g.Go(func() error {
			return job(ctx, idx)
		})
	}
	return g.Wait()
}
