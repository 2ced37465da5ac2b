package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-dashboard/internal/http/v1/problem"
	"github.com/janisto/huma-dashboard/internal/platform/auth"
	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
	accountsvc "github.com/janisto/huma-dashboard/internal/service/account"
	"github.com/janisto/huma-dashboard/internal/settings"
)

// Register registers the sign-up, sign-in and recovery endpoints. Signing out
// also discards the caller's open forms.
func Register(api huma.API, svc accountsvc.Service, sessions *settings.Sessions) {
	signUp := settings.SignUpSchema()
	signIn := settings.SignInSchema()
	recovery := settings.RecoverySchema()

	huma.Register(api, huma.Operation{
		OperationID:   "sign-up",
		Method:        http.MethodPost,
		Path:          "/auth/signup",
		Summary:       "Create an account",
		Description:   "Registers an email and password account, seeds its profile and signs it in.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SignUpInput) (*SessionOutput, error) {
		if errs := signUp.Validate(settings.AccountDraft{
			Email:     input.Body.Email,
			Password:  input.Body.Password,
			FirstName: input.Body.FirstName,
			LastName:  input.Body.LastName,
			Username:  input.Body.Username,
		}); errs != nil {
			return nil, problem.Validation(errs)
		}
		s, err := svc.SignUp(ctx, input.Body.Email, input.Body.Password, accountsvc.ProfileSeed{
			Firstname: input.Body.FirstName,
			Lastname:  input.Body.LastName,
			Username:  input.Body.Username,
		})
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &SessionOutput{Body: toHTTPSession(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-in",
		Method:      http.MethodPost,
		Path:        "/auth/signin",
		Summary:     "Sign in with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *SignInInput) (*SessionOutput, error) {
		if errs := signIn.Validate(settings.AccountDraft{
			Email:    input.Body.Email,
			Password: input.Body.Password,
		}); errs != nil {
			return nil, problem.Validation(errs)
		}
		s, err := svc.SignIn(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &SessionOutput{Body: toHTTPSession(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "send-magic-link",
		Method:        http.MethodPost,
		Path:          "/auth/magic-link",
		Summary:       "Email a sign-in link",
		Description:   "Sends a passwordless sign-in link. The response does not reveal whether the address is registered.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *EmailInput) (*struct{}, error) {
		if errs := recovery.Validate(settings.AccountDraft{Email: input.Body.Email}); errs != nil {
			return nil, problem.Validation(errs)
		}
		if err := svc.SendMagicLink(ctx, input.Body.Email); err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "reset-password",
		Method:        http.MethodPost,
		Path:          "/auth/password-reset",
		Summary:       "Email a password reset link",
		Description:   "Sends a password recovery link. The response does not reveal whether the address is registered.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *EmailInput) (*struct{}, error) {
		if errs := recovery.Validate(settings.AccountDraft{Email: input.Body.Email}); errs != nil {
			return nil, problem.Validation(errs)
		}
		if err := svc.ResetPassword(ctx, input.Body.Email); err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "sign-out",
		Method:        http.MethodPost,
		Path:          "/auth/signout",
		Summary:       "Sign out",
		Description:   "Revokes the caller's refresh tokens and discards their open forms.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusNoContent,
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		user := auth.UserFromContext(ctx)

		sessions.End(user.UID)
		if err := svc.SignOut(ctx, user.UID); err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "current-user",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Get the signed-in user",
		Tags:        []string{"Auth"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, _ *struct{}) (*UserOutput, error) {
		u, err := svc.CurrentUser(ctx)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &UserOutput{Body: toHTTPUser(*u)}, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, accountsvc.ErrInvalidCredentials), errors.Is(err, accountsvc.ErrUserDisabled):
		return huma.Error401Unauthorized("invalid email or password")
	case errors.Is(err, accountsvc.ErrNoSession):
		return huma.Error401Unauthorized("not authenticated")
	case errors.Is(err, accountsvc.ErrEmailTaken):
		return huma.Error409Conflict("email already registered")
	case errors.Is(err, accountsvc.ErrWeakPassword):
		return problem.Field(settings.FieldPassword, settings.MsgPasswordWeak)
	default:
		applog.LogError(ctx, "account request failed", err)
		return huma.Error502BadGateway("authentication service unavailable")
	}
}
