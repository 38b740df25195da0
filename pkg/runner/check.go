package runner

import (
	"context"

	"github.com/vertti/storecheck/pkg/check"
)

// Check is one named verification step: an action against the system under
// test and a predicate over the value it produces.
type Check[T any] struct {
	Name      string
	Action    func(ctx context.Context) (T, error)
	Predicate func(T) bool
}

// Run invokes the action and applies the predicate to its value.
// An action error is recorded as a failure and the predicate is skipped.
func (c Check[T]) Run(ctx context.Context) check.Result {
	result := check.Result{Name: c.Name}

	value, err := c.Action(ctx)
	if err != nil {
		return result.Fail("action failed: "+err.Error(), err)
	}

	if !c.Predicate(value) {
		return result.Fail("predicate returned false", nil)
	}
	return result.Pass()
}
