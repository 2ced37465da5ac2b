package settings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
)

// Sessions keeps one form instance per user and form, so concurrent requests
// from the same user share the in-flight guard of a single controller. A
// user's forms are disposed once they go unused for Deps.IdleTTL.
type Sessions struct {
	deps Deps

	mu            sync.Mutex
	profiles      map[string]*ProfileForm
	feedback      map[string]*FeedbackForm
	notifications map[string]*NotificationsForm
	lastSeen      map[string]time.Time
}

// NewSessions creates an empty registry.
func NewSessions(deps Deps) *Sessions {
	return &Sessions{
		deps:          deps.withDefaults(),
		profiles:      make(map[string]*ProfileForm),
		feedback:      make(map[string]*FeedbackForm),
		notifications: make(map[string]*NotificationsForm),
		lastSeen:      make(map[string]time.Time),
	}
}

// Deps returns the collaborators with defaults applied.
func (s *Sessions) Deps() Deps { return s.deps }

// Profile returns the user's profile form, loading the current record on
// first use.
func (s *Sessions) Profile(ctx context.Context, userID string) (*ProfileForm, error) {
	s.mu.Lock()
	s.touch(userID)
	f, ok := s.profiles[userID]
	s.mu.Unlock()
	if ok {
		return f, nil
	}

	current, err := s.deps.Cache.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.profiles[userID]; ok {
		return f, nil
	}
	f = NewProfileForm(userID, current, s.deps)
	s.profiles[userID] = f
	return f, nil
}

// Feedback returns the user's feedback form.
func (s *Sessions) Feedback(userID string) *FeedbackForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(userID)
	f, ok := s.feedback[userID]
	if !ok {
		f = NewFeedbackForm(userID, s.deps)
		s.feedback[userID] = f
	}
	return f
}

// Notifications returns the user's notifications form.
func (s *Sessions) Notifications(ctx context.Context, userID string) (*NotificationsForm, error) {
	s.mu.Lock()
	s.touch(userID)
	f, ok := s.notifications[userID]
	s.mu.Unlock()
	if ok {
		return f, nil
	}

	current, err := s.deps.Cache.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.notifications[userID]; ok {
		return f, nil
	}
	f = NewNotificationsForm(userID, current, s.deps)
	s.notifications[userID] = f
	return f, nil
}

// End disposes the user's forms and clears the cached profile, as on sign-out.
// Submissions already running complete without touching the disposed forms.
func (s *Sessions) End(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop(userID)
	s.deps.Cache.Clear(userID)
}

// Len reports how many users are tracked.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastSeen)
}

// Sweep disposes the forms of users idle for longer than Deps.IdleTTL and
// returns how many users were evicted. Users with a submission in progress
// are kept until it finishes.
func (s *Sessions) Sweep() int {
	now := s.deps.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for userID, seen := range s.lastSeen {
		if now.Sub(seen) <= s.deps.IdleTTL || s.busy(userID) {
			continue
		}
		s.drop(userID)
		if s.deps.Cache != nil {
			s.deps.Cache.Clear(userID)
		}
		evicted++
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				applog.LogInfo(ctx, "idle form sessions evicted", zap.Int("users", n))
			}
		}
	}
}

// touch records an access. Callers hold mu.
func (s *Sessions) touch(userID string) {
	s.lastSeen[userID] = s.deps.Now()
}

// busy reports whether any of the user's forms holds a submission. Callers hold mu.
func (s *Sessions) busy(userID string) bool {
	if f, ok := s.profiles[userID]; ok && f.Busy() {
		return true
	}
	if f, ok := s.feedback[userID]; ok && f.Busy() {
		return true
	}
	if f, ok := s.notifications[userID]; ok && f.Busy() {
		return true
	}
	return false
}

// drop disposes and forgets the user's forms. Callers hold mu.
func (s *Sessions) drop(userID string) {
	if f, ok := s.profiles[userID]; ok {
		f.Dispose()
		delete(s.profiles, userID)
	}
	if f, ok := s.feedback[userID]; ok {
		f.Dispose()
		delete(s.feedback, userID)
	}
	if f, ok := s.notifications[userID]; ok {
		f.Dispose()
		delete(s.notifications, userID)
	}
	delete(s.lastSeen, userID)
}
