package check

import "context"

// Checker is implemented by anything the runner can execute as one step.
// The runner wraps typed actions and predicates into Checkers; callers
// with a ready-made verification can implement it directly.
type Checker interface {
	Run(ctx context.Context) Result
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) Result

// Run calls f(ctx).
func (f CheckerFunc) Run(ctx context.Context) Result {
	return f(ctx)
}
