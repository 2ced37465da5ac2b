package settings

import (
	"regexp"
	"time"

	"github.com/janisto/huma-dashboard/internal/form"
)

// Account form fields.
const (
	FieldPassword = "password"
	FieldUsername = "username"
)

// Account form messages.
const (
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Please enter a valid email address."
	MsgPasswordRequired = "Password is required."
	MsgUsernameInvalid  = "Username may contain letters, digits, dots, dashes and underscores."
	MsgUsernameTooLong  = "Must be at most 50 characters."
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// AccountDraft is what the sign-up, sign-in, recovery and profile creation
// forms collect. Each schema reads only its own fields.
type AccountDraft struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Username    string
	DateOfBirth string
}

func accountEmail(d AccountDraft) string    { return d.Email }
func accountPassword(d AccountDraft) string { return d.Password }

func emailRules() []form.Rule[AccountDraft] {
	return []form.Rule[AccountDraft]{
		form.Required(FieldEmail, accountEmail, MsgEmailRequired),
		form.Email(FieldEmail, accountEmail, MsgEmailInvalid),
	}
}

func seedRules() []form.Rule[AccountDraft] {
	first := func(d AccountDraft) string { return d.FirstName }
	last := func(d AccountDraft) string { return d.LastName }
	user := func(d AccountDraft) string { return d.Username }
	return []form.Rule[AccountDraft]{
		form.Required(FieldFirstName, first, MsgFirstNameRequired),
		form.MaxLength(FieldFirstName, first, 100, MsgNameTooLong),
		form.Required(FieldLastName, last, MsgLastNameRequired),
		form.MaxLength(FieldLastName, last, 100, MsgNameTooLong),
		form.Pattern(FieldUsername, user, usernamePattern, MsgUsernameInvalid),
		form.MaxLength(FieldUsername, user, 50, MsgUsernameTooLong),
	}
}

// SignUpSchema validates a new account before it reaches the identity provider.
func SignUpSchema() *form.Schema[AccountDraft] {
	rules := append(emailRules(),
		form.Required(FieldPassword, accountPassword, MsgPasswordRequired),
		form.PasswordComplexity(FieldPassword, accountPassword, MsgPasswordWeak),
	)
	return form.NewSchema(append(rules, seedRules()...)...)
}

// SignInSchema only checks presence and shape; existing passwords predate
// the current complexity policy.
func SignInSchema() *form.Schema[AccountDraft] {
	rules := append(emailRules(),
		form.Required(FieldPassword, accountPassword, MsgPasswordRequired),
	)
	return form.NewSchema(rules...)
}

// RecoverySchema validates the magic-link and password-reset forms.
func RecoverySchema() *form.Schema[AccountDraft] {
	return form.NewSchema(emailRules()...)
}

// ProfileSeedSchema validates a profile created for an existing account,
// after a failed sign-up seed or a deleted profile.
func ProfileSeedSchema(now func() time.Time) *form.Schema[AccountDraft] {
	rules := append(seedRules(), form.Custom(FieldDateOfBirth, nil, func(d AccountDraft) string {
		return dateOfBirthMessage(d.DateOfBirth, now())
	}))
	return form.NewSchema(rules...)
}
