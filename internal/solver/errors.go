package solver

import "fmt"

// StepError reports a step that was aborted. On collision overflow or
// cancellation the world is left as it was before the step began. On
// dynamo.ErrInvalidState cell ownership and object poses have already been
// committed and the world should be discarded.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
