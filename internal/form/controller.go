package form

import (
	"context"
	"sync"
)

// State is a controller lifecycle state.
type State int

const (
	Idle State = iota
	Editing
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the aggregated outcome of one submit attempt.
type Result struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Options configures a Controller.
type Options[D, R any] struct {
	Schema *Schema[D]
	// Submit runs the side effects for a validated snapshot of the draft.
	Submit func(ctx context.Context, draft D) (R, error)
	// Reset builds the next draft from the current one and the confirmed record.
	// It clears ephemeral fields. When nil the draft is kept as is.
	Reset func(draft D, confirmed R) D
	// OnTransition observes every state change.
	OnTransition func(from, to State)
}

// Controller owns a draft and its validation state and serializes submissions.
// Collaborators run without the lock held, so edits are accepted while a
// submission is pending.
type Controller[D, R any] struct {
	mu       sync.Mutex
	opts     Options[D, R]
	state    State
	draft    D
	touched  map[string]bool
	errs     Errors
	last     *Result
	disposed bool
	// reserved is held by SubmitEdits from before its edits until its
	// submission ends.
	reserved bool
}

// New creates a controller in the Idle state.
func New[D, R any](initial D, opts Options[D, R]) *Controller[D, R] {
	if opts.Schema == nil {
		opts.Schema = NewSchema[D]()
	}
	return &Controller[D, R]{
		opts:    opts,
		draft:   initial,
		touched: map[string]bool{},
		errs:    Errors{},
	}
}

// State returns the current state.
func (c *Controller[D, R]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission holds the form.
func (c *Controller[D, R]) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reserved || c.state == Submitting
}

// Draft returns a copy of the current draft.
func (c *Controller[D, R]) Draft() D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Errors returns the currently surfaced field errors.
func (c *Controller[D, R]) Errors() Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.clone()
}

// Touched reports whether field has been edited since the last reset.
func (c *Controller[D, R]) Touched(field string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[field]
}

// LastResult returns the result of the most recent completed submission.
func (c *Controller[D, R]) LastResult() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}

// Set applies mutate to the draft, marks field touched and re-validates that
// field plus touched fields whose rules read it.
func (c *Controller[D, R]) Set(field string, mutate func(*D)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	mutate(&c.draft)
	c.touched[field] = true
	c.revalidate(field)
	for _, dep := range c.opts.Schema.Dependents(field) {
		if c.touched[dep] {
			c.revalidate(dep)
		}
	}
	if c.state == Idle {
		c.transition(Editing)
	}
	return nil
}

func (c *Controller[D, R]) revalidate(field string) {
	if msg := c.opts.Schema.ValidateField(c.draft, field); msg != "" {
		c.errs[field] = msg
	} else {
		delete(c.errs, field)
	}
}

// Submit validates the whole draft and, when valid, runs the submit function on
// a snapshot. A call made while another submission is pending returns
// ErrSubmissionInFlight without running anything.
func (c *Controller[D, R]) Submit(ctx context.Context) (Result, error) {
	res, _, err := c.SubmitRecord(ctx)
	return res, err
}

// SubmitRecord is Submit that also returns the record confirmed by the
// collaborators on success.
func (c *Controller[D, R]) SubmitRecord(ctx context.Context) (Result, R, error) {
	return c.submit(ctx, false)
}

// SubmitEdits reserves the form, runs apply to edit the draft and submits it.
// When another submission is pending or another SubmitEdits holds the form,
// it returns ErrSubmissionInFlight before apply runs, so a rejected request
// leaves the draft untouched. An error from apply is returned as is and
// nothing is submitted.
func (c *Controller[D, R]) SubmitEdits(ctx context.Context, apply func() error) (Result, R, error) {
	var zero R
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return Result{ErrorMessage: MsgUnexpected}, zero, ErrDisposed
	}
	if c.reserved || c.state == Submitting {
		c.mu.Unlock()
		return Result{ErrorMessage: MsgInFlight}, zero, ErrSubmissionInFlight
	}
	c.reserved = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.reserved = false
		c.mu.Unlock()
	}()

	if err := apply(); err != nil {
		return Result{}, zero, err
	}
	return c.submit(ctx, true)
}

func (c *Controller[D, R]) submit(ctx context.Context, holder bool) (Result, R, error) {
	var zero R
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return Result{ErrorMessage: MsgUnexpected}, zero, ErrDisposed
	}
	if c.state == Submitting || (c.reserved && !holder) {
		c.mu.Unlock()
		return Result{ErrorMessage: MsgInFlight}, zero, ErrSubmissionInFlight
	}
	if errs := c.opts.Schema.Validate(c.draft); len(errs) > 0 {
		c.errs = errs
		for f := range errs {
			c.touched[f] = true
		}
		c.transition(Editing)
		res := Result{ErrorMessage: MsgInvalid}
		c.last = &res
		c.mu.Unlock()
		return res, zero, &ValidationError{Fields: errs.clone()}
	}
	c.errs = Errors{}
	c.transition(Submitting)
	snapshot := c.draft
	c.mu.Unlock()

	confirmed, err := c.opts.Submit(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		res := Result{ErrorMessage: UserMessage(err)}
		if !c.disposed {
			c.transition(Failed)
			c.transition(Editing)
			c.last = &res
		}
		return res, zero, err
	}
	res := Result{Success: true}
	if !c.disposed {
		c.transition(Succeeded)
		if c.opts.Reset != nil {
			c.draft = c.opts.Reset(c.draft, confirmed)
		}
		c.touched = map[string]bool{}
		c.errs = Errors{}
		c.last = &res
		c.transition(Idle)
	}
	return res, confirmed, nil
}

// Dispose detaches the controller. A pending submission still runs to
// completion but no longer updates controller state.
func (c *Controller[D, R]) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

// Disposed reports whether Dispose was called.
func (c *Controller[D, R]) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *Controller[D, R]) transition(to State) {
	from := c.state
	c.state = to
	if c.opts.OnTransition != nil && from != to {
		c.opts.OnTransition(from, to)
	}
}
