// Package pipeline runs an ordered list of fallible side effects.
//
// Steps run in order and the first failure stops the run. Steps that already
// completed are not rolled back; the caller gets their names for logging.
package pipeline

import (
	"context"
	"fmt"
)

// Step is one named side effect over a shared state value.
type Step[S any] struct {
	Name string
	// Message is shown to the user when the step fails.
	Message string
	// Skip reports whether the step does not apply to s. Nil means always run.
	Skip func(s *S) bool
	Run  func(ctx context.Context, s *S) error
}

// StepError reports the first failing step.
type StepError struct {
	Step      string
	Message   string
	Completed []string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// UserMessage returns the short message for the failing step.
func (e *StepError) UserMessage() string { return e.Message }

// Report lists what a run did.
type Report struct {
	Completed []string
	Skipped   []string
}

// Pipeline is an ordered set of steps.
type Pipeline[S any] struct {
	steps []Step[S]
}

// New builds a pipeline from steps in execution order.
func New[S any](steps ...Step[S]) *Pipeline[S] {
	return &Pipeline[S]{steps: steps}
}

// Steps returns the step names in order.
func (p *Pipeline[S]) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Run executes the steps against state. On failure it returns a *StepError and
// the report of steps completed before it.
func (p *Pipeline[S]) Run(ctx context.Context, state *S) (Report, error) {
	var rep Report
	for _, step := range p.steps {
		if step.Skip != nil && step.Skip(state) {
			rep.Skipped = append(rep.Skipped, step.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, &StepError{Step: step.Name, Message: step.Message, Completed: rep.Completed, Err: err}
		}
		if err := step.Run(ctx, state); err != nil {
			return rep, &StepError{Step: step.Name, Message: step.Message, Completed: rep.Completed, Err: err}
		}
		rep.Completed = append(rep.Completed, step.Name)
	}
	return rep, nil
}
