package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCheck is returned by Register and Add when a check is
	// missing its action or predicate.
	ErrInvalidCheck = errors.New("invalid check: action and predicate are required")

	// ErrNotIdle is returned when a check is registered after the run started.
	ErrNotIdle = errors.New("checks can only be registered before the run starts")

	// ErrAlreadyRun is returned by a second call to Run. Runners are single
	// use; build a new one to run the checks again.
	ErrAlreadyRun = errors.New("runner has already been run")

	// ErrNotCompleted is returned by Report before the run has completed.
	ErrNotCompleted = errors.New("run has not completed")
)

// InternalError reports corrupted runner bookkeeping. It is the only
// failure Run propagates once checks have started executing.
type InternalError struct {
	Registered int
	Recorded   int
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("runner bookkeeping corrupted: %d checks registered, %d results recorded", e.Registered, e.Recorded)
}
