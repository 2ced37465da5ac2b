package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type record struct {
	Name string
}

func newPasswordController(submit func(context.Context, passwordDraft) (record, error)) *Controller[passwordDraft, record] {
	return New(passwordDraft{Name: "Jane"}, Options[passwordDraft, record]{
		Schema: passwordSchema(),
		Submit: submit,
		Reset: func(d passwordDraft, r record) passwordDraft {
			d.Name = r.Name
			d.NewPassword = ""
			d.ConfirmPassword = ""
			return d
		},
	})
}

func TestControllerSetValidatesOnlyTouchedField(t *testing.T) {
	c := newPasswordController(nil)
	if err := c.Set("newPassword", func(d *passwordDraft) { d.NewPassword = "Secret123" }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State() != Editing {
		t.Fatalf("expected editing, got %s", c.State())
	}
	errs := c.Errors()
	if _, ok := errs["confirmPassword"]; ok {
		t.Fatalf("untouched confirmPassword must not surface errors: %v", errs)
	}

	_ = c.Set("confirmPassword", func(d *passwordDraft) { d.ConfirmPassword = "Secret12" })
	if c.Errors()["confirmPassword"] != "Passwords do not match." {
		t.Fatalf("expected mismatch, got %v", c.Errors())
	}

	_ = c.Set("newPassword", func(d *passwordDraft) { d.NewPassword = "Secret12" })
	if _, ok := c.Errors()["confirmPassword"]; ok {
		t.Fatalf("expected dependent confirmPassword to be revalidated, got %v", c.Errors())
	}
}

func TestControllerSubmitValidationFailure(t *testing.T) {
	called := false
	c := newPasswordController(func(context.Context, passwordDraft) (record, error) {
		called = true
		return record{}, nil
	})
	_ = c.Set("name", func(d *passwordDraft) { d.Name = "" })

	res, err := c.Submit(context.Background())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if res.Success || res.ErrorMessage != MsgInvalid {
		t.Fatalf("unexpected result: %+v", res)
	}
	if called {
		t.Fatal("submit function must not run for invalid draft")
	}
	if c.State() != Editing {
		t.Fatalf("expected editing, got %s", c.State())
	}
	if c.Errors()["name"] == "" || !c.Touched("name") {
		t.Fatalf("expected surfaced name error, got %v", c.Errors())
	}
}

func TestControllerSubmitSuccessResets(t *testing.T) {
	var transitions []State
	c := New(passwordDraft{Name: "Jane"}, Options[passwordDraft, record]{
		Schema: passwordSchema(),
		Submit: func(_ context.Context, d passwordDraft) (record, error) {
			return record{Name: d.Name + " Doe"}, nil
		},
		Reset: func(d passwordDraft, r record) passwordDraft {
			d.Name = r.Name
			d.NewPassword, d.ConfirmPassword = "", ""
			return d
		},
		OnTransition: func(_, to State) { transitions = append(transitions, to) },
	})
	_ = c.Set("newPassword", func(d *passwordDraft) { d.NewPassword = "Secret123" })
	_ = c.Set("confirmPassword", func(d *passwordDraft) { d.ConfirmPassword = "Secret123" })

	res, err := c.Submit(context.Background())
	if err != nil || !res.Success {
		t.Fatalf("expected success, got %+v %v", res, err)
	}
	d := c.Draft()
	if d.Name != "Jane Doe" || d.NewPassword != "" || d.ConfirmPassword != "" {
		t.Fatalf("unexpected draft after reset: %+v", d)
	}
	if c.State() != Idle || c.Touched("newPassword") || len(c.Errors()) != 0 {
		t.Fatalf("expected clean idle controller")
	}
	want := []State{Editing, Submitting, Succeeded, Idle}
	if len(transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, transitions)
		}
	}
}

func TestControllerSubmitFailureRetainsValues(t *testing.T) {
	c := newPasswordController(func(context.Context, passwordDraft) (record, error) {
		return record{}, remoteErr{"Failed to update profile."}
	})
	_ = c.Set("name", func(d *passwordDraft) { d.Name = "Janet" })

	res, err := c.Submit(context.Background())
	if err == nil || res.Success {
		t.Fatalf("expected failure")
	}
	if res.ErrorMessage != "Failed to update profile." {
		t.Fatalf("unexpected message %q", res.ErrorMessage)
	}
	if c.State() != Editing {
		t.Fatalf("expected editing, got %s", c.State())
	}
	if c.Draft().Name != "Janet" {
		t.Fatalf("expected retained value, got %q", c.Draft().Name)
	}
	last, ok := c.LastResult()
	if !ok || last.Success {
		t.Fatalf("expected failed last result, got %+v", last)
	}
}

func TestControllerRejectsConcurrentSubmit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	c := newPasswordController(func(context.Context, passwordDraft) (record, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
		return record{Name: "Jane"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-started

	if c.State() != Submitting {
		t.Fatalf("expected submitting, got %s", c.State())
	}
	res, err := c.Submit(context.Background())
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if res.Success {
		t.Fatal("rejected submission must not report success")
	}
	if err := c.Set("email", func(d *passwordDraft) { d.Email = "jane@example.com" }); err != nil {
		t.Fatalf("expected edits during submission, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
	if c.Draft().Email != "jane@example.com" {
		t.Fatalf("expected edit made during submission to survive")
	}
}

func TestControllerDisposeDuringSubmit(t *testing.T) {
	release := make(chan struct{})
	c := newPasswordController(func(context.Context, passwordDraft) (record, error) {
		<-release
		return record{Name: "Changed"}, nil
	})
	done := make(chan Result, 1)
	go func() {
		res, _ := c.Submit(context.Background())
		done <- res
	}()

	deadline := time.Now().Add(time.Second)
	for c.State() != Submitting {
		if time.Now().After(deadline) {
			t.Fatal("submission did not start")
		}
		time.Sleep(time.Millisecond)
	}
	c.Dispose()
	close(release)

	res := <-done
	if !res.Success {
		t.Fatalf("expected submission to complete, got %+v", res)
	}
	if c.Draft().Name != "Jane" {
		t.Fatalf("disposed controller must not be updated, got %q", c.Draft().Name)
	}
	if err := c.Set("name", func(d *passwordDraft) { d.Name = "x" }); !errors.Is(err, ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	if Submitting.String() != "submitting" || State(42).String() != "unknown" {
		t.Fatal("unexpected state names")
	}
}

func TestControllerSubmitEditsRejectsBeforeApplying(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := newPasswordController(func(context.Context, passwordDraft) (record, error) {
		close(started)
		<-release
		return record{Name: "Jane"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, _, err := c.SubmitEdits(context.Background(), func() error {
			return c.Set("email", func(d *passwordDraft) { d.Email = "jane@example.com" })
		})
		done <- err
	}()
	<-started

	applied := false
	_, _, err := c.SubmitEdits(context.Background(), func() error {
		applied = true
		return c.Set("email", func(d *passwordDraft) { d.Email = "intruder@example.com" })
	})
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if applied {
		t.Fatal("edits of a rejected request must not run")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if c.Draft().Email != "jane@example.com" {
		t.Fatalf("expected only the accepted edits, got %q", c.Draft().Email)
	}
}

func TestControllerSubmitEditsHoldsFormWhileApplying(t *testing.T) {
	var calls int
	c := newPasswordController(func(context.Context, passwordDraft) (record, error) {
		calls++
		return record{Name: "Jane"}, nil
	})

	_, _, err := c.SubmitEdits(context.Background(), func() error {
		if !c.Busy() {
			t.Error("expected the form busy while edits apply")
		}
		if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
			t.Errorf("expected plain submit rejected while edits apply, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one submission, got %d", calls)
	}
	if c.Busy() {
		t.Fatal("expected the form released after submitting")
	}

	applyErr := errors.New("bad part")
	if _, _, err := c.SubmitEdits(context.Background(), func() error { return applyErr }); !errors.Is(err, applyErr) {
		t.Fatalf("expected apply error, got %v", err)
	}
	if calls != 1 {
		t.Fatal("nothing may be submitted after a failed apply")
	}
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("expected the form released after SubmitEdits, got %v", err)
	}
}
