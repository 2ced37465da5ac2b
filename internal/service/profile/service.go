package profile

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service errors
var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
)

// Push notification levels.
const (
	PushAll      = "all"
	PushMentions = "mentions"
	PushNone     = "none"
)

// Notifications holds the user's notification preferences.
type Notifications struct {
	CommunicationEmails bool   `json:"communicationEmails" firestore:"communication_emails"`
	MarketingEmails     bool   `json:"marketingEmails" firestore:"marketing_emails"`
	SocialEmails        bool   `json:"socialEmails" firestore:"social_emails"`
	SecurityEmails      bool   `json:"securityEmails" firestore:"security_emails"`
	PushNotifications   string `json:"pushNotifications" firestore:"push_notifications"`
}

// DefaultNotifications returns the preferences given to new profiles.
func DefaultNotifications() Notifications {
	return Notifications{
		CommunicationEmails: true,
		SocialEmails:        true,
		SecurityEmails:      true,
		PushNotifications:   PushAll,
	}
}

// Profile represents stored profile data. Email is immutable after creation.
type Profile struct {
	ID            string
	Email         string
	Username      string
	Firstname     string
	Lastname      string
	DateOfBirth   *time.Time
	AvatarURL     string
	Notifications Notifications
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateParams for creating a profile.
type CreateParams struct {
	Email       string
	Username    string
	Firstname   string
	Lastname    string
	DateOfBirth *time.Time
}

// UpdateParams for updating a profile. Nil fields are left unchanged.
type UpdateParams struct {
	Firstname *string
	Lastname  *string
	// DateOfBirth replaces the stored date; ClearDateOfBirth removes it.
	DateOfBirth      *time.Time
	ClearDateOfBirth bool
	AvatarURL        *string
	Notifications    *Notifications
}

// Service defines profile operations.
//
// Implementations must normalize input data:
//   - Email: lowercase and trim whitespace
//   - Firstname, Lastname, Username: trim whitespace
//   - DateOfBirth: truncated to a UTC calendar date
type Service interface {
	Create(ctx context.Context, userID string, params CreateParams) (*Profile, error)
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error)
	Delete(ctx context.Context, userID string) error
}

// newProfile builds the initial record for params.
func newProfile(userID string, params CreateParams, now time.Time) *Profile {
	return &Profile{
		ID:            userID,
		Email:         strings.ToLower(strings.TrimSpace(params.Email)),
		Username:      strings.TrimSpace(params.Username),
		Firstname:     strings.TrimSpace(params.Firstname),
		Lastname:      strings.TrimSpace(params.Lastname),
		DateOfBirth:   normalizeDate(params.DateOfBirth),
		Notifications: DefaultNotifications(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// apply copies the set fields of params onto p.
func (params UpdateParams) apply(p *Profile, now time.Time) {
	if params.Firstname != nil {
		p.Firstname = strings.TrimSpace(*params.Firstname)
	}
	if params.Lastname != nil {
		p.Lastname = strings.TrimSpace(*params.Lastname)
	}
	if params.ClearDateOfBirth {
		p.DateOfBirth = nil
	} else if params.DateOfBirth != nil {
		p.DateOfBirth = normalizeDate(params.DateOfBirth)
	}
	if params.AvatarURL != nil {
		p.AvatarURL = *params.AvatarURL
	}
	if params.Notifications != nil {
		p.Notifications = *params.Notifications
	}
	p.UpdatedAt = now
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// clone returns a deep copy so callers never share a record with the store.
func (p *Profile) clone() *Profile {
	c := *p
	if p.DateOfBirth != nil {
		d := *p.DateOfBirth
		c.DateOfBirth = &d
	}
	return &c
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
