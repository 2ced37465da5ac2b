package account

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
	"github.com/janisto/huma-dashboard/internal/service/profile"
)

// AdminClient is the subset of the Firebase Admin auth client used here.
type AdminClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseService implements Service with Firebase Authentication.
type FirebaseService struct {
	admin    AdminClient
	toolkit  *IdentityToolkit
	profiles profile.Service
	siteURL  string
}

// NewFirebaseService wires the Admin client, the Identity Toolkit client and
// the profile store used to seed new accounts. siteURL is the base of the links
// placed in recovery and sign-in emails.
func NewFirebaseService(admin AdminClient, toolkit *IdentityToolkit, profiles profile.Service, siteURL string) *FirebaseService {
	return &FirebaseService{
		admin:    admin,
		toolkit:  toolkit,
		profiles: profiles,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// SignUp creates the user, seeds the profile and signs the user in. A failed
// profile seed is logged and does not undo the created account.
func (s *FirebaseService) SignUp(ctx context.Context, email, password string, seed ProfileSeed) (*Session, error) {
	email = normalizeEmail(email)
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)
	if name := strings.TrimSpace(seed.Firstname + " " + seed.Lastname); name != "" {
		params = params.DisplayName(name)
	}

	rec, err := s.admin.CreateUser(ctx, params)
	if err != nil {
		err = mapAdminError(err)
		applog.LogAuditEvent(ctx, "sign_up", "", "account", email, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}
	applog.LogAuditEvent(ctx, "sign_up", rec.UID, "account", rec.UID, applog.AuditSuccess, nil)

	_, err = s.profiles.Create(ctx, rec.UID, profile.CreateParams{
		Email:     email,
		Username:  seed.Username,
		Firstname: seed.Firstname,
		Lastname:  seed.Lastname,
	})
	if err != nil && !errors.Is(err, profile.ErrAlreadyExists) {
		applog.LogError(ctx, "profile seed failed", err, zap.String("user_id", rec.UID))
	}

	return s.SignIn(ctx, email, password)
}

// SignIn exchanges email and password for a session.
func (s *FirebaseService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	session, err := s.toolkit.SignInWithPassword(ctx, email, password)
	if err != nil {
		err = mapToolkitError(err)
		if errors.Is(err, ErrUserNotFound) {
			err = ErrInvalidCredentials
		}
		applog.LogAuditEvent(ctx, "sign_in", "", "account", email, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}
	applog.LogAuditEvent(ctx, "sign_in", session.User.ID, "account", session.User.ID, applog.AuditSuccess, nil)
	return session, nil
}

// SignOut revokes the user's refresh tokens. Tokens issued earlier fail
// verification from then on.
func (s *FirebaseService) SignOut(ctx context.Context, userID string) error {
	if err := s.admin.RevokeRefreshTokens(ctx, userID); err != nil {
		err = mapAdminError(err)
		applog.LogAuditEvent(ctx, "sign_out", userID, "account", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}
	applog.LogAuditEvent(ctx, "sign_out", userID, "account", userID, applog.AuditSuccess, nil)
	return nil
}

// SendMagicLink emails a sign-in link that returns to /auth/callback.
func (s *FirebaseService) SendMagicLink(ctx context.Context, email string) error {
	return s.sendEmail(ctx, "magic_link", oobEmailSignIn, email, s.siteURL+"/auth/callback")
}

// ResetPassword emails a password reset link that returns to /auth/reset-password.
func (s *FirebaseService) ResetPassword(ctx context.Context, email string) error {
	return s.sendEmail(ctx, "password_reset", oobPasswordReset, email, s.siteURL+"/auth/reset-password")
}

// sendEmail treats an unknown address as success so responses do not reveal
// which emails are registered.
func (s *FirebaseService) sendEmail(ctx context.Context, action, requestType, email, continueURL string) error {
	email = normalizeEmail(email)
	err := s.toolkit.SendOobCode(ctx, requestType, email, continueURL)
	if err != nil {
		err = mapToolkitError(err)
		if errors.Is(err, ErrUserNotFound) {
			applog.LogInfo(ctx, "recovery email skipped for unknown address", zap.String("action", action))
			return nil
		}
		applog.LogAuditEvent(ctx, action, "", "account", email, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}
	applog.LogAuditEvent(ctx, action, "", "account", email, applog.AuditSuccess, nil)
	return nil
}

// UpdateCredential sets a new password for userID.
func (s *FirebaseService) UpdateCredential(ctx context.Context, userID, newPassword string) error {
	_, err := s.admin.UpdateUser(ctx, userID, (&fbauth.UserToUpdate{}).Password(newPassword))
	if err != nil {
		err = mapAdminError(err)
		applog.LogAuditEvent(ctx, "update", userID, "credential", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}
	applog.LogAuditEvent(ctx, "update", userID, "credential", userID, applog.AuditSuccess, nil)
	return nil
}

// CurrentUser returns the caller resolved by the auth middleware.
func (s *FirebaseService) CurrentUser(ctx context.Context) (*User, error) {
	return CurrentUser(ctx)
}

func mapAdminError(err error) error {
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return errors.Join(ErrEmailTaken, err)
	case fbauth.IsUserNotFound(err):
		return errors.Join(ErrUserNotFound, err)
	case strings.Contains(err.Error(), "password must be"):
		return errors.Join(ErrWeakPassword, err)
	default:
		return err
	}
}

func mapToolkitError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Reason() {
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return errors.Join(ErrInvalidCredentials, err)
	case "EMAIL_NOT_FOUND":
		return errors.Join(ErrUserNotFound, err)
	case "USER_DISABLED":
		return errors.Join(ErrUserDisabled, err)
	case "WEAK_PASSWORD":
		return errors.Join(ErrWeakPassword, err)
	case "EMAIL_EXISTS":
		return errors.Join(ErrEmailTaken, err)
	default:
		return err
	}
}

// Compile-time interface check
var _ Service = (*FirebaseService)(nil)
