package form

import (
	"regexp"
	"strings"
	"testing"
)

type passwordDraft struct {
	Name            string
	Email           string
	NewPassword     string
	ConfirmPassword string
}

func passwordSchema() *Schema[passwordDraft] {
	newPw := func(d passwordDraft) string { return d.NewPassword }
	confirm := func(d passwordDraft) string { return d.ConfirmPassword }
	return NewSchema(
		Required("name", func(d passwordDraft) string { return d.Name }, "Name is required."),
		Email("email", func(d passwordDraft) string { return d.Email }, "Invalid email address."),
		PasswordComplexity("newPassword", newPw, "Password is too weak."),
		RequiredWith("confirmPassword", confirm, "newPassword", newPw, "Please confirm your new password."),
		EqualTo("confirmPassword", confirm, "newPassword", newPw, "Passwords do not match."),
	)
}

func TestValidatePasswordPairBothEmpty(t *testing.T) {
	s := passwordSchema()
	for _, email := range []string{"", "jane@example.com"} {
		if errs := s.Validate(passwordDraft{Name: "Jane", Email: email}); errs != nil {
			t.Fatalf("expected valid draft for email %q, got %v", email, errs)
		}
	}
}

func TestValidatePasswordPairExactlyOne(t *testing.T) {
	s := passwordSchema()
	cases := []passwordDraft{
		{Name: "Jane", NewPassword: "Secret123"},
		{Name: "Jane", ConfirmPassword: "Secret123"},
	}
	for _, d := range cases {
		errs := s.Validate(d)
		if errs["confirmPassword"] != "Please confirm your new password." {
			t.Fatalf("expected both-required error on confirmPassword for %+v, got %v", d, errs)
		}
	}
}

func TestValidatePasswordPairMismatch(t *testing.T) {
	errs := passwordSchema().Validate(passwordDraft{Name: "Jane", NewPassword: "Secret123", ConfirmPassword: "Secret124"})
	if errs["confirmPassword"] != "Passwords do not match." {
		t.Fatalf("expected mismatch error, got %v", errs)
	}
	if _, ok := errs["newPassword"]; ok {
		t.Fatalf("did not expect newPassword error, got %v", errs)
	}
}

func TestValidatePasswordPairEqualAndComplex(t *testing.T) {
	errs := passwordSchema().Validate(passwordDraft{Name: "Jane", NewPassword: "Secret123", ConfirmPassword: "Secret123"})
	if errs != nil {
		t.Fatalf("expected valid draft, got %v", errs)
	}
}

func TestValidatePasswordComplexity(t *testing.T) {
	for _, pw := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		errs := passwordSchema().Validate(passwordDraft{Name: "Jane", NewPassword: pw, ConfirmPassword: pw})
		if errs["newPassword"] != "Password is too weak." {
			t.Fatalf("expected complexity error for %q, got %v", pw, errs)
		}
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	s := passwordSchema()
	d := passwordDraft{Email: "not-an-email", NewPassword: "x"}
	first := s.Validate(d)
	for i := 0; i < 10; i++ {
		again := s.Validate(d)
		if len(again) != len(first) {
			t.Fatalf("expected identical results, got %v and %v", first, again)
		}
		for k, v := range first {
			if again[k] != v {
				t.Fatalf("field %s: expected %q, got %q", k, v, again[k])
			}
		}
	}
}

func TestValidateFirstMessageWins(t *testing.T) {
	get := func(d passwordDraft) string { return d.Name }
	s := NewSchema(
		Required("name", get, "required"),
		MinLength("name", get, 3, "too short"),
	)
	if got := s.Validate(passwordDraft{})["name"]; got != "required" {
		t.Fatalf("expected first failing rule message, got %q", got)
	}
	if got := s.Validate(passwordDraft{Name: "Al"})["name"]; got != "too short" {
		t.Fatalf("expected min length message, got %q", got)
	}
}

func TestLengthRulesCountCharacters(t *testing.T) {
	get := func(d passwordDraft) string { return d.Name }
	s := NewSchema(
		MinLength("name", get, 3, "min"),
		MaxLength("name", get, 4, "max"),
	)
	if errs := s.Validate(passwordDraft{Name: "äöü"}); errs != nil {
		t.Fatalf("expected multibyte name to pass, got %v", errs)
	}
	if got := s.Validate(passwordDraft{Name: strings.Repeat("é", 5)})["name"]; got != "max" {
		t.Fatalf("expected max error, got %q", got)
	}
}

func TestEmailRule(t *testing.T) {
	s := passwordSchema()
	if got := s.Validate(passwordDraft{Name: "Jane", Email: "jane@"})["email"]; got != "Invalid email address." {
		t.Fatalf("expected email error, got %q", got)
	}
}

func TestPatternAndOneOf(t *testing.T) {
	get := func(d passwordDraft) string { return d.Name }
	s := NewSchema(
		Pattern("name", get, regexp.MustCompile(`^[a-z]+$`), "lowercase only"),
		OneOf("email", func(d passwordDraft) string { return d.Email }, []string{"all", "none"}, "bad choice"),
	)
	errs := s.Validate(passwordDraft{Name: "ABC", Email: "some"})
	if errs["name"] != "lowercase only" || errs["email"] != "bad choice" {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := s.Validate(passwordDraft{Email: "all"}); errs != nil {
		t.Fatalf("empty pattern value should pass, got %v", errs)
	}
}

func TestDependents(t *testing.T) {
	deps := passwordSchema().Dependents("newPassword")
	if len(deps) != 1 || deps[0] != "confirmPassword" {
		t.Fatalf("expected confirmPassword dependent, got %v", deps)
	}
	if deps := passwordSchema().Dependents("name"); len(deps) != 0 {
		t.Fatalf("expected no dependents, got %v", deps)
	}
}

func TestValidateField(t *testing.T) {
	s := passwordSchema()
	d := passwordDraft{NewPassword: "Secret123"}
	if got := s.ValidateField(d, "confirmPassword"); got != "Please confirm your new password." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := s.ValidateField(d, "email"); got != "" {
		t.Fatalf("expected email to pass, got %q", got)
	}
}
