// Package account wraps the identity provider: sign-up, password and magic
// link sign-in, sign-out, recovery emails and credential changes.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/janisto/huma-dashboard/internal/platform/auth"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoSession          = errors.New("no active session")
)

// ProfileSeed is stored as the initial profile on sign-up.
type ProfileSeed struct {
	Firstname string
	Lastname  string
	Username  string
}

// User is the identity provider's view of a user.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// Session holds the tokens returned by a successful sign-in.
type Session struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	User         User   `json:"user"`
}

// Service is the auth collaborator.
type Service interface {
	SignUp(ctx context.Context, email, password string, seed ProfileSeed) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, userID string) error
	SendMagicLink(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email string) error
	UpdateCredential(ctx context.Context, userID, newPassword string) error
	CurrentUser(ctx context.Context) (*User, error)
}

// CurrentUser resolves the caller from the verified token in ctx.
func CurrentUser(ctx context.Context) (*User, error) {
	u := auth.UserFromContext(ctx)
	if u == nil {
		return nil, ErrNoSession
	}
	return &User{ID: u.UID, Email: u.Email, EmailVerified: u.EmailVerified}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	default:
		return "internal_error"
	}
}
