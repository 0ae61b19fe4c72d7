package solver

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/cellbody/internal/dynamo"
)

// Options tune a World. Zero values select defaults.
type Options struct {
	// Iterations is the number of resolve passes per step. Zero selects the
	// default; resolution cannot be switched off.
	Iterations int
	// Restitution is the coefficient e in the contact impulse, in [0, 1].
	Restitution float64
	// CollisionCapacity bounds the records a step may produce. A step that
	// exceeds it fails and leaves the world untouched.
	CollisionCapacity int
	Workers           int
	MinChunk          int
	// Diagonal widens the rejection search to eight neighbors.
	Diagonal bool
	// WarmupPasses relax the rejection field before the first step.
	WarmupPasses int
	// ValidateState fails a step that leaves NaN or Inf in object state.
	ValidateState bool

	Logger *slog.Logger
}

const (
	defaultIterations   = 4
	defaultWarmup       = 4
	minCollisionRecords = 64
)

func DefaultOptions() Options {
	return Options{
		Iterations:    defaultIterations,
		Restitution:   0.5,
		MinChunk:      256,
		WarmupPasses:  defaultWarmup,
		ValidateState: true,
	}
}

func (o Options) withDefaults(cells int) Options {
	if o.Iterations == 0 {
		o.Iterations = defaultIterations
	}
	if o.CollisionCapacity == 0 {
		o.CollisionCapacity = max(minCollisionRecords, cells/4)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func (o Options) validate() error {
	if o.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative, got %d", dynamo.ErrInvalidConfig, o.Iterations)
	}
	if o.Restitution < 0 || o.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in [0,1], got %v", dynamo.ErrInvalidConfig, o.Restitution)
	}
	if o.CollisionCapacity < 0 {
		return fmt.Errorf("%w: collision capacity must be non-negative, got %d", dynamo.ErrInvalidConfig, o.CollisionCapacity)
	}
	if o.WarmupPasses < 0 {
		return fmt.Errorf("%w: warmup passes must be non-negative, got %d", dynamo.ErrInvalidConfig, o.WarmupPasses)
	}
	return nil
}
