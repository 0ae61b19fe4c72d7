package dynamo

import "errors"

// Domain errors for physics operations.
var (
	// ErrCollisionOverflow indicates more contended claims in a step than the collision list holds.
	ErrCollisionOverflow = errors.New("dynamo: collision list overflow")

	// ErrDegenerateObject indicates an object with zero mass or moment of inertia.
	ErrDegenerateObject = errors.New("dynamo: degenerate object (no owned cells)")

	// ErrInvalidScene indicates an initial ownership bitmap that does not match the grid or object table.
	ErrInvalidScene = errors.New("dynamo: invalid scene")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrContextCanceled indicates the run was interrupted between steps.
	ErrContextCanceled = errors.New("dynamo: run canceled by context")

	// ErrInvalidState indicates NaN or Inf in object state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)
