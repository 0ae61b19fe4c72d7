// Package solver advances a grid-resident rigid-body world one step at a time.
//
// A step is a fixed pipeline of data-parallel phases with a join between
// each: clear, integrate, predict-move, collision readback, resolve,
// finalize and commit, rejection refresh.
package solver

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/cells"
	"github.com/san-kum/cellbody/internal/collision"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/rejection"
	"github.com/san-kum/cellbody/internal/scene"
)

// World owns every piece of simulation state. It is not safe for concurrent
// use; the parallelism lives inside Step.
type World struct {
	grid       *grid.Grid
	objects    *body.Store
	cells      *cells.Field
	rejection  *rejection.Field
	collisions *collision.List
	pool       *dynamo.Pool

	opts      Options
	observers []Observer
	contacts  []atomic.Int32
	step      int
}

// New builds a world from a scene. Objects start at their centroids with
// the scene's velocities, and the rejection field is warmed up.
func New(sc *scene.Scene, opts Options) (*World, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	g, err := sc.Grid()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidScene, err)
	}
	opts = opts.withDefaults(g.Cells())

	objects, err := body.FromBitmap(g, sc.Owners, sc.Count())
	if err != nil {
		return nil, err
	}
	for id, m := range sc.Motions {
		objects.SetVelocity(body.ID(id), m.Linear, m.Angular)
	}
	field, err := cells.New(g, sc.Owners)
	if err != nil {
		return nil, err
	}

	w := &World{
		grid:       g,
		objects:    objects,
		cells:      field,
		rejection:  rejection.New(g, opts.Diagonal),
		collisions: collision.New(opts.CollisionCapacity),
		pool:       dynamo.NewPool(opts.Workers, opts.MinChunk),
		opts:       opts,
		contacts:   make([]atomic.Int32, sc.Count()),
	}
	w.rejection.Warmup(w.pool, w.cells, opts.WarmupPasses)

	opts.Logger.Debug("world created",
		"width", g.Width(), "height", g.Height(), "mode", g.Mode().String(),
		"objects", sc.Count(), "owned", field.OwnedCount(),
		"workers", w.pool.Workers(), "capacity", opts.CollisionCapacity)
	return w, nil
}

func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }

func (w *World) Grid() *grid.Grid            { return w.grid }
func (w *World) Objects() *body.Store        { return w.objects }
func (w *World) Cells() *cells.Field         { return w.cells }
func (w *World) Rejection() *rejection.Field { return w.rejection }
func (w *World) Options() Options            { return w.opts }

// Steps is the number of completed steps.
func (w *World) Steps() int { return w.step }

// Step advances the world once. On failure the world is unchanged and the
// error is a *StepError.
func (w *World) Step(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StepError{Step: w.step + 1, Err: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)}
	}
	start := time.Now()
	pool := w.pool

	w.cells.Clear(pool)
	w.collisions.Reset()

	w.objects.Checkpoint()
	w.objects.IntegrateAndPredict(pool)

	move := w.cells.PredictMove(pool, w.objects, w.collisions)

	if err := w.collisions.Check(); err != nil {
		w.objects.Restore()
		w.opts.Logger.Error("collision list overflow, step skipped",
			"step", w.step+1, "records", w.collisions.Count(), "capacity", w.collisions.Capacity())
		return nil, &StepError{Step: w.step + 1, Err: err}
	}

	contacts, impulses := w.resolve()

	w.objects.Finalize(pool)
	commit := w.cells.Commit(pool)

	if w.opts.ValidateState && !w.objects.Valid() {
		// cell ownership has already been committed; report instead of rolling back
		w.opts.Logger.Error("invalid object state", "step", w.step+1)
		return nil, &StepError{Step: w.step + 1, Err: dynamo.ErrInvalidState}
	}

	w.rejection.Refresh(pool, w.cells, w.objects)
	w.step++

	r := &Report{
		Step:        w.step,
		OwnedBefore: commit.Before,
		OwnedAfter:  commit.After,
		Move:        move,
		Collisions:  w.collisions.Count(),
		Contacts:    contacts,
		Impulses:    impulses,
		Elapsed:     time.Since(start),
		Objects:     w.objects.Snapshot(),
	}
	for _, o := range w.observers {
		o.OnStep(r)
	}
	w.opts.Logger.Debug("step", "report", r)
	return r, nil
}

// SetVelocity overrides the motion of id between steps. Inert objects cannot
// be set in motion.
func (w *World) SetVelocity(id body.ID, v grid.Vec2, omega float64) error {
	if int(id) >= w.objects.Len() {
		return fmt.Errorf("%w: object %d of %d", dynamo.ErrInvalidScene, id, w.objects.Len())
	}
	if w.objects.Inert(id) {
		return fmt.Errorf("%w: object %d", dynamo.ErrDegenerateObject, id)
	}
	if !v.IsValid() || math.IsNaN(omega) || math.IsInf(omega, 0) {
		return fmt.Errorf("%w: non-finite velocity for object %d", dynamo.ErrInvalidState, id)
	}
	w.objects.SetVelocity(id, v, omega)
	return nil
}

// Run performs up to steps steps, stopping early when callback returns
// false. Cancellation is checked between steps.
func (w *World) Run(ctx context.Context, steps int, callback func(*Report) bool) error {
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		r, err := w.Step(ctx)
		if err != nil {
			return err
		}
		if callback != nil && !callback(r) {
			return nil
		}
	}
	return nil
}

func (w *World) Snapshot() *Snapshot {
	return &Snapshot{
		Step:       w.step,
		Width:      w.grid.Width(),
		Height:     w.grid.Height(),
		Owners:     w.cells.Owners(),
		Objects:    w.objects.Snapshot(),
		Rejection:  w.rejection.Snapshot(),
		Velocities: w.cells.Velocities(),
	}
}
