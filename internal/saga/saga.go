// Package saga runs a short sequence of dependent writes without a database
// transaction. Each step declares what happens when it fails: a Required step
// aborts the run and undoes the completed steps in reverse order, a
// BestEffort step is noted and the run carries on.
package saga

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

type Policy int

const (
	Required Policy = iota
	BestEffort
)

func (p Policy) String() string {
	switch p {
	case Required:
		return "required"
	case BestEffort:
		return "best-effort"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Step is one write of a saga. Compensate may be nil.
type Step struct {
	Name       string
	Policy     Policy
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error

	// Skip, when set and returning true, leaves the step out of the run.
	Skip func() bool
}

// StepError reports the step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result describes a finished run.
type Result struct {
	// Err is the failure of a Required step, nil when every Required step succeeded.
	Err error
	// CompensationErr collects compensations that themselves failed.
	CompensationErr error
	// Partial lists failed BestEffort steps in execution order.
	Partial []*StepError
	// Completed names the steps whose action succeeded, in order.
	Completed []string
}

func (r Result) Failed() bool { return r.Err != nil }

// PartiallyFailed reports whether the run succeeded with best-effort losses.
func (r Result) PartiallyFailed() bool { return r.Err == nil && len(r.Partial) > 0 }

// Saga is an ordered list of steps.
type Saga struct {
	steps []Step
}

func New(steps ...Step) *Saga {
	return &Saga{steps: steps}
}

// Add appends a step and returns the saga for chaining.
func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run executes the steps in order. Compensations run with a context that is
// not cancelled by ctx so an aborted request still cleans up.
func (s *Saga) Run(ctx context.Context) Result {
	var (
		res  Result
		done []Step
	)

	for _, step := range s.steps {
		if step.Skip != nil && step.Skip() {
			continue
		}

		if err := step.Action(ctx); err != nil {
			stepErr := &StepError{Step: step.Name, Err: err}
			if step.Policy == BestEffort {
				res.Partial = append(res.Partial, stepErr)
				continue
			}
			res.Err = stepErr
			res.CompensationErr = compensate(context.WithoutCancel(ctx), done)
			return res
		}

		done = append(done, step)
		res.Completed = append(res.Completed, step.Name)
	}

	return res
}

func compensate(ctx context.Context, done []Step) error {
	var result *multierror.Error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			result = multierror.Append(result, &StepError{Step: step.Name, Err: err})
		}
	}
	return result.ErrorOrNil()
}
