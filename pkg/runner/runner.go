// Package runner executes an ordered list of named checks against a live
// system, strictly one after another, and records a result for each.
//
// Checks run in registration order. A check is not started until the
// previous one has settled, so later checks may rely on side effects of
// earlier ones. A failing check never stops the run.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"

	"github.com/vertti/storecheck/pkg/check"
	"github.com/vertti/storecheck/pkg/output"
)

// State is the lifecycle position of a Runner.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type step struct {
	name    string
	checker check.Checker
}

// Runner owns the ordered check list and the results of its single run.
type Runner struct {
	logger     log.Logger
	out        io.Writer
	timeout    time.Duration
	startDelay time.Duration
	runID      string

	mu      sync.Mutex
	state   State
	steps   []step
	results []check.Result
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithOutput sets where per-check status lines are printed during the run.
// The default is stdout; nil disables printing.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithTimeout bounds how long the runner waits for a single check.
// Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithStartDelay makes Run wait before the first check, giving the system
// under test time to settle.
func WithStartDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.startDelay = d
	}
}

// New returns an idle Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: log.NewNopLogger(),
		out:    os.Stdout,
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.With(r.logger, "component", "runner", "run_id", r.runID)
	return r
}

// Register appends a typed check to r. Names need not be unique.
func Register[T any](r *Runner, name string, action func(ctx context.Context) (T, error), predicate func(T) bool) error {
	if action == nil || predicate == nil {
		return ErrInvalidCheck
	}
	return r.Add(name, Check[T]{Name: name, Action: action, Predicate: predicate})
}

// Add appends a ready-made Checker to r under the given name.
func (r *Runner) Add(name string, c check.Checker) error {
	if c == nil {
		return ErrInvalidCheck
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return ErrNotIdle
	}
	r.steps = append(r.steps, step{name: name, checker: c})
	return nil
}

// Len returns the number of registered checks.
func (r *Runner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// RunID identifies this runner in log lines.
func (r *Runner) RunID() string {
	return r.runID
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Run executes every registered check in order and returns the summary.
//
// Failures of individual checks are recorded, never returned. A cancelled
// ctx does not stop the run: each remaining check still executes with the
// cancelled context and is recorded.
func (r *Runner) Run(ctx context.Context) (check.Summary, error) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return check.Summary{}, ErrAlreadyRun
	}
	r.state = StateRunning
	steps := r.steps
	r.mu.Unlock()

	level.Debug(r.logger).Log("msg", "starting run", "checks", len(steps))

	if r.startDelay > 0 {
		timer := time.NewTimer(r.startDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	results := make([]check.Result, 0, len(steps))
	for i, s := range steps {
		level.Debug(r.logger).Log("msg", "running check", "index", i+1, "check", s.name)

		start := time.Now()
		res := r.execute(ctx, s)
		res.Duration = time.Since(start)

		if r.out != nil {
			output.PrintResult(r.out, res)
		}
		r.logResult(i+1, res)

		results = append(results, res)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(results) != len(steps) {
		err := &InternalError{Registered: len(steps), Recorded: len(results)}
		level.Error(r.logger).Log("msg", "run aborted", "err", err)
		return check.Summary{}, err
	}

	r.results = results
	r.state = StateCompleted

	summary := check.Summarize(results)
	level.Debug(r.logger).Log("msg", "run completed", "total", summary.Total, "passed", summary.Passed, "failed", summary.Failed)
	return summary, nil
}

// execute runs one step, converting panics and timeouts into failures.
func (r *Runner) execute(ctx context.Context, s step) check.Result {
	if r.timeout <= 0 {
		return r.settle(s, safeRun(ctx, s))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan check.Result, 1)
	go func() {
		done <- safeRun(ctx, s)
	}()

	select {
	case res := <-done:
		return r.settle(s, res)
	case <-ctx.Done():
		res := check.Result{Name: s.name}
		return res.Fail(fmt.Sprintf("no result within %s", r.timeout), ctx.Err())
	}
}

// settle makes sure a result is attributable and has a definite status.
func (r *Runner) settle(s step, res check.Result) check.Result {
	if res.Name == "" {
		res.Name = s.name
	}
	if res.Status != check.StatusOK && res.Status != check.StatusFail {
		return res.Fail(fmt.Sprintf("check reported unknown status %q", res.Status), nil)
	}
	return res
}

func safeRun(ctx context.Context, s step) (res check.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = check.Result{Name: s.name}
			res.Fail(fmt.Sprintf("panic: %v", p), fmt.Errorf("check panicked: %v", p))
		}
	}()
	return s.checker.Run(ctx)
}

func (r *Runner) logResult(index int, res check.Result) {
	if res.OK() {
		level.Debug(r.logger).Log("msg", "check passed", "index", index, "check", res.Name, "duration", res.Duration)
		return
	}
	level.Debug(r.logger).Log("msg", "check failed", "index", index, "check", res.Name, "duration", res.Duration, "err", res.Err)
}

// Results returns a copy of the recorded results, in execution order.
func (r *Runner) Results() []check.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]check.Result(nil), r.results...)
}

// Summary returns the aggregate counts of the completed run.
func (r *Runner) Summary() check.Summary {
	return check.Summarize(r.Results())
}

// Report writes each result followed by the aggregate line.
func (r *Runner) Report(w io.Writer) error {
	if r.State() != StateCompleted {
		return ErrNotCompleted
	}
	output.PrintReport(w, r.Results())
	return nil
}
