package settings

import (
	"context"
	"errors"
	"time"

	"github.com/janisto/huma-dashboard/internal/form"
	"github.com/janisto/huma-dashboard/internal/pipeline"
	"github.com/janisto/huma-dashboard/internal/platform/timeutil"
	"github.com/janisto/huma-dashboard/internal/service/profile"
	"github.com/janisto/huma-dashboard/internal/service/storage"
	"github.com/janisto/huma-dashboard/internal/upload"
)

// Profile form fields.
const (
	FieldEmail           = "email"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldDateOfBirth     = "dateOfBirth"
	FieldAvatar          = "avatar"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)

// Profile form messages.
const (
	MsgFirstNameRequired = "First name is required."
	MsgLastNameRequired  = "Last name is required."
	MsgNameTooLong       = "Must be at most 100 characters."
	MsgDateInvalid       = "Date of birth must be a valid date (YYYY-MM-DD)."
	MsgDateInFuture      = "Date of birth cannot be in the future."
	MsgPasswordWeak      = "Password must be at least 8 characters and include an upper-case letter, a lower-case letter and a digit."
	MsgConfirmRequired   = "Please confirm your new password."
	MsgPasswordMismatch  = "Passwords do not match."
)

// Profile pipeline steps.
const (
	StepUploadAvatar     = "upload-avatar"
	StepUpdateCredential = "update-credential"
	StepUpdateProfile    = "update-profile"
	StepRefreshProfile   = "refresh-profile"
)

// ProfileDraft is the editable copy of a profile. Avatar and the password
// fields are ephemeral and cleared after a successful submission.
type ProfileDraft struct {
	Email           string
	FirstName       string
	LastName        string
	DateOfBirth     string
	Avatar          *upload.File
	NewPassword     string
	ConfirmPassword string
}

// DraftFromProfile builds a draft mirroring p.
func DraftFromProfile(p *profile.Profile) ProfileDraft {
	return ProfileDraft{
		Email:       p.Email,
		FirstName:   p.Firstname,
		LastName:    p.Lastname,
		DateOfBirth: timeutil.FormatDate(p.DateOfBirth),
	}
}

// ProfileSchema returns the validation rules of the profile form. Dates of
// birth are checked against now, so a fixed clock makes Validate repeatable.
func ProfileSchema(avatar upload.Policy, now func() time.Time) *form.Schema[ProfileDraft] {
	first := func(d ProfileDraft) string { return d.FirstName }
	last := func(d ProfileDraft) string { return d.LastName }
	newPw := func(d ProfileDraft) string { return d.NewPassword }
	confirm := func(d ProfileDraft) string { return d.ConfirmPassword }
	return form.NewSchema(
		form.Required(FieldFirstName, first, MsgFirstNameRequired),
		form.MaxLength(FieldFirstName, first, 100, MsgNameTooLong),
		form.Required(FieldLastName, last, MsgLastNameRequired),
		form.MaxLength(FieldLastName, last, 100, MsgNameTooLong),
		form.Custom(FieldDateOfBirth, nil, func(d ProfileDraft) string {
			return dateOfBirthMessage(d.DateOfBirth, now())
		}),
		form.Custom(FieldAvatar, nil, func(d ProfileDraft) string {
			if d.Avatar == nil {
				return ""
			}
			return rejectionMessage(avatar.Check(d.Avatar))
		}),
		form.PasswordComplexity(FieldNewPassword, newPw, MsgPasswordWeak),
		form.RequiredWith(FieldConfirmPassword, confirm, FieldNewPassword, newPw, MsgConfirmRequired),
		form.EqualTo(FieldConfirmPassword, confirm, FieldNewPassword, newPw, MsgPasswordMismatch),
	)
}

// dateOfBirthMessage checks an optional YYYY-MM-DD date against now.
func dateOfBirthMessage(value string, now time.Time) string {
	dob, err := timeutil.ParseDate(value)
	if err != nil {
		return MsgDateInvalid
	}
	if dob != nil && dob.After(now.UTC()) {
		return MsgDateInFuture
	}
	return ""
}

func rejectionMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *upload.RejectionError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

type profileRun struct {
	userID    string
	draft     ProfileDraft
	avatarURL string
	record    *profile.Profile
}

// ProfileForm is the profile/settings form of one user.
type ProfileForm struct {
	*form.Controller[ProfileDraft, *profile.Profile]
	userID string
	avatar *upload.Selection
}

// NewProfileForm creates the form for userID starting from current.
func NewProfileForm(userID string, current *profile.Profile, deps Deps) *ProfileForm {
	deps = deps.withDefaults()
	f := &ProfileForm{
		userID: userID,
		avatar: upload.NewSelection(deps.AvatarPolicy, current.AvatarURL),
	}
	steps := profilePipeline(deps)
	f.Controller = form.New(DraftFromProfile(current), form.Options[ProfileDraft, *profile.Profile]{
		Schema: ProfileSchema(deps.AvatarPolicy, deps.Now),
		Submit: func(ctx context.Context, d ProfileDraft) (*profile.Profile, error) {
			state := &profileRun{userID: userID, draft: d}
			if err := run(ctx, "profile", userID, steps, state); err != nil {
				return nil, err
			}
			return state.record, nil
		},
		Reset: func(_ ProfileDraft, p *profile.Profile) ProfileDraft {
			f.avatar.Commit(p.AvatarURL)
			return DraftFromProfile(p)
		},
	})
	return f
}

func profilePipeline(deps Deps) *pipeline.Pipeline[profileRun] {
	return pipeline.New(
		pipeline.Step[profileRun]{
			Name:    StepUploadAvatar,
			Message: "Failed to upload avatar.",
			Skip:    func(s *profileRun) bool { return s.draft.Avatar == nil },
			Run: func(ctx context.Context, s *profileRun) error {
				path := storage.AvatarPath(s.userID)
				a := s.draft.Avatar
				if err := deps.Storage.Upload(ctx, path, a.Data, a.MimeType(), storage.UploadOptions{Overwrite: true}); err != nil {
					return err
				}
				s.avatarURL = deps.Storage.PublicURL(path)
				return nil
			},
		},
		pipeline.Step[profileRun]{
			Name:    StepUpdateCredential,
			Message: "Failed to update password.",
			Skip:    func(s *profileRun) bool { return s.draft.NewPassword == "" },
			Run: func(ctx context.Context, s *profileRun) error {
				return deps.Accounts.UpdateCredential(ctx, s.userID, s.draft.NewPassword)
			},
		},
		pipeline.Step[profileRun]{
			Name:    StepUpdateProfile,
			Message: "Failed to update profile.",
			Run: func(ctx context.Context, s *profileRun) error {
				params := profile.UpdateParams{
					Firstname: &s.draft.FirstName,
					Lastname:  &s.draft.LastName,
				}
				dob, err := timeutil.ParseDate(s.draft.DateOfBirth)
				if err != nil {
					return err
				}
				if dob == nil {
					params.ClearDateOfBirth = true
				} else {
					params.DateOfBirth = dob
				}
				if s.avatarURL != "" {
					params.AvatarURL = &s.avatarURL
				}
				_, err = deps.Profiles.Update(ctx, s.userID, params)
				return err
			},
		},
		pipeline.Step[profileRun]{
			Name:    StepRefreshProfile,
			Message: "Profile saved, but reloading it failed.",
			Run: func(ctx context.Context, s *profileRun) error {
				p, err := deps.Cache.Refresh(ctx, s.userID)
				if err != nil {
					return err
				}
				s.record = p
				return nil
			},
		},
	)
}

// SelectAvatar validates f and, when accepted, stages it for the next
// submission and starts decoding its preview. A rejected file clears any
// staged avatar and leaves the displayed avatar unchanged.
func (f *ProfileForm) SelectAvatar(file *upload.File) (<-chan upload.Preview, error) {
	previews, err := f.avatar.Select(file)
	if err != nil {
		_ = f.Set(FieldAvatar, func(d *ProfileDraft) { d.Avatar = nil })
		return nil, err
	}
	if err := f.Set(FieldAvatar, func(d *ProfileDraft) { d.Avatar = file }); err != nil {
		return nil, err
	}
	return previews, nil
}

// ClearAvatar drops a staged avatar.
func (f *ProfileForm) ClearAvatar() {
	f.avatar.Clear()
	_ = f.Set(FieldAvatar, func(d *ProfileDraft) { d.Avatar = nil })
}

// DisplayedAvatar returns the preview of a staged avatar or the persisted URL.
func (f *ProfileForm) DisplayedAvatar() string {
	return f.avatar.Displayed()
}

// UserID returns the owner of the form.
func (f *ProfileForm) UserID() string { return f.userID }
