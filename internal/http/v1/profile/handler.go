package profile

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-dashboard/internal/http/v1/problem"
	"github.com/janisto/huma-dashboard/internal/platform/auth"
	"github.com/janisto/huma-dashboard/internal/platform/timeutil"
	profilesvc "github.com/janisto/huma-dashboard/internal/service/profile"
	"github.com/janisto/huma-dashboard/internal/settings"
	"github.com/janisto/huma-dashboard/internal/upload"
)

// maxFormBytes bounds multipart bodies; the avatar policy is enforced separately.
const maxFormBytes = 8 << 20

var bearer = []map[string][]string{{"bearerAuth": {}}}

// Register registers profile endpoints.
func Register(api huma.API, sessions *settings.Sessions, prefix string) {
	cache := sessions.Deps().Cache
	profiles := sessions.Deps().Profiles
	seed := settings.ProfileSeedSchema(sessions.Deps().Now)

	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profile",
		Summary:       "Create user profile",
		Description:   "Creates the profile of an account that has none, after a failed sign-up or a deleted profile. The email comes from the token.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, func(ctx context.Context, input *ProfileCreateInput) (*ProfileCreateOutput, error) {
		user := auth.UserFromContext(ctx)

		if errs := seed.Validate(settings.AccountDraft{
			FirstName:   input.Body.FirstName,
			LastName:    input.Body.LastName,
			Username:    input.Body.Username,
			DateOfBirth: input.Body.DateOfBirth,
		}); errs != nil {
			return nil, problem.Validation(errs)
		}
		dob, err := timeutil.ParseDate(input.Body.DateOfBirth)
		if err != nil {
			return nil, problem.Field(settings.FieldDateOfBirth, settings.MsgDateInvalid)
		}

		p, err := profiles.Create(ctx, user.UID, profilesvc.CreateParams{
			Email:       user.Email,
			Username:    input.Body.Username,
			Firstname:   input.Body.FirstName,
			Lastname:    input.Body.LastName,
			DateOfBirth: dob,
		})
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		cache.Invalidate(user.UID)
		return &ProfileCreateOutput{
			Location: prefix + "/profile",
			Body:     toHTTPProfile(p),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get current user's profile",
		Description: "Returns the authenticated user's profile, loading it on first access.",
		Tags:        []string{"Profile"},
		Security:    bearer,
	}, func(ctx context.Context, _ *ProfileGetInput) (*ProfileGetOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := cache.Get(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:  "update-profile",
		Method:       http.MethodPatch,
		Path:         "/profile",
		Summary:      "Submit the profile form",
		Description:  "Applies the sent fields to the profile form and submits it: avatar upload, password change, profile update and reload.",
		Tags:         []string{"Profile"},
		MaxBodyBytes: maxFormBytes,
		Security:     bearer,
	}, func(ctx context.Context, input *ProfileUpdateInput) (*ProfileUpdateOutput, error) {
		user := auth.UserFromContext(ctx)

		f, err := sessions.Profile(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		_, record, err := f.SubmitEdits(ctx, func() error {
			return applyProfileForm(ctx, f, &input.RawBody, sessions.Deps().AvatarPolicy)
		})
		if err != nil {
			return nil, submitError(ctx, err)
		}
		return &ProfileUpdateOutput{Body: toHTTPProfile(record)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:  "preview-avatar",
		Method:       http.MethodPost,
		Path:         "/profile/avatar/preview",
		Summary:      "Stage an avatar",
		Description:  "Validates an avatar image, stages it on the profile form and returns its preview.",
		Tags:         []string{"Profile"},
		MaxBodyBytes: maxFormBytes,
		Security:     bearer,
	}, func(ctx context.Context, input *AvatarPreviewInput) (*AvatarPreviewOutput, error) {
		user := auth.UserFromContext(ctx)

		f, err := sessions.Profile(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		file, err := upload.FromForm(&input.RawBody, settings.FieldAvatar, sessions.Deps().AvatarPolicy.MaxBytes)
		if err != nil {
			return nil, huma.Error400BadRequest("unreadable avatar")
		}
		if file == nil {
			return nil, problem.Field(settings.FieldAvatar, "An image file is required.")
		}
		previews, err := f.SelectAvatar(file)
		if err != nil {
			return nil, avatarError(ctx, err)
		}
		select {
		case p := <-previews:
			return &AvatarPreviewOutput{Body: toHTTPPreview(p)}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-notifications",
		Method:      http.MethodPut,
		Path:        "/profile/notifications",
		Summary:     "Submit notification preferences",
		Description: "Replaces the authenticated user's notification preferences.",
		Tags:        []string{"Profile"},
		Security:    bearer,
	}, func(ctx context.Context, input *NotificationsUpdateInput) (*ProfileUpdateOutput, error) {
		user := auth.UserFromContext(ctx)

		f, err := sessions.Notifications(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		next := fromHTTPNotifications(input.Body)
		_, record, err := f.SubmitEdits(ctx, func() error {
			return f.Set(settings.FieldPushNotifications, func(n *profilesvc.Notifications) { *n = next })
		})
		if err != nil {
			return nil, problem.FromSubmit(ctx, err)
		}
		return &ProfileUpdateOutput{Body: toHTTPProfile(record)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-profile",
		Method:        http.MethodDelete,
		Path:          "/profile",
		Summary:       "Delete current user's profile",
		Description:   "Permanently deletes the authenticated user's profile and discards open forms.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearer,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		user := auth.UserFromContext(ctx)

		if err := profiles.Delete(ctx, user.UID); err != nil {
			return nil, mapServiceError(ctx, err)
		}
		sessions.End(user.UID)
		return nil, nil
	})
}

// applyProfileForm copies the multipart parts onto the form draft.
func applyProfileForm(ctx context.Context, f *settings.ProfileForm, body *multipart.Form, policy upload.Policy) error {
	text := []struct {
		field string
		set   func(*settings.ProfileDraft, string)
	}{
		{settings.FieldFirstName, func(d *settings.ProfileDraft, v string) { d.FirstName = v }},
		{settings.FieldLastName, func(d *settings.ProfileDraft, v string) { d.LastName = v }},
		{settings.FieldDateOfBirth, func(d *settings.ProfileDraft, v string) { d.DateOfBirth = v }},
	}
	for _, t := range text {
		v, ok := upload.FormValue(body, t.field)
		if !ok {
			continue
		}
		if err := f.Set(t.field, func(d *settings.ProfileDraft) { t.set(d, v) }); err != nil {
			return problem.FromSubmit(ctx, err)
		}
	}

	newPassword, _ := upload.FormValue(body, settings.FieldNewPassword)
	confirm, _ := upload.FormValue(body, settings.FieldConfirmPassword)
	if err := f.Set(settings.FieldNewPassword, func(d *settings.ProfileDraft) { d.NewPassword = newPassword }); err != nil {
		return problem.FromSubmit(ctx, err)
	}
	if err := f.Set(settings.FieldConfirmPassword, func(d *settings.ProfileDraft) { d.ConfirmPassword = confirm }); err != nil {
		return problem.FromSubmit(ctx, err)
	}

	file, err := upload.FromForm(body, settings.FieldAvatar, policy.MaxBytes)
	if err != nil {
		return huma.Error400BadRequest("unreadable avatar")
	}
	if file == nil {
		return nil
	}
	if _, err := f.SelectAvatar(file); err != nil {
		return avatarError(ctx, err)
	}
	return nil
}

// submitError passes through the huma errors produced while applying the
// request parts and maps everything else as a submission failure.
func submitError(ctx context.Context, err error) error {
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}
	return problem.FromSubmit(ctx, err)
}

func avatarError(ctx context.Context, err error) error {
	var rej *upload.RejectionError
	if errors.As(err, &rej) {
		return problem.Field(settings.FieldAvatar, rej.Message)
	}
	return problem.FromSubmit(ctx, err)
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, profilesvc.ErrNotFound):
		return huma.Error404NotFound("profile not found")
	case errors.Is(err, profilesvc.ErrAlreadyExists):
		return huma.Error409Conflict("profile already exists")
	default:
		return problem.FromSubmit(ctx, err)
	}
}
