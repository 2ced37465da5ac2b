package form

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var formats = validator.New()

// Rule is one declarative constraint. Field is the error slot the message is
// attached to; DependsOn lists other fields the check reads.
type Rule[D any] struct {
	Field     string
	DependsOn []string
	Check     func(D) string
}

// Schema is an ordered set of rules over a draft type. Validation is pure.
type Schema[D any] struct {
	rules []Rule[D]
}

// NewSchema builds a schema from rules evaluated in order.
func NewSchema[D any](rules ...Rule[D]) *Schema[D] {
	return &Schema[D]{rules: rules}
}

// Validate returns the first failing message per field, or nil when d is valid.
func (s *Schema[D]) Validate(d D) Errors {
	var errs Errors
	for _, r := range s.rules {
		if errs != nil {
			if _, failed := errs[r.Field]; failed {
				continue
			}
		}
		if msg := r.Check(d); msg != "" {
			if errs == nil {
				errs = Errors{}
			}
			errs[r.Field] = msg
		}
	}
	return errs
}

// ValidateField evaluates only the rules attached to field.
func (s *Schema[D]) ValidateField(d D, field string) string {
	for _, r := range s.rules {
		if r.Field != field {
			continue
		}
		if msg := r.Check(d); msg != "" {
			return msg
		}
	}
	return ""
}

// Dependents returns the fields whose rules read field.
func (s *Schema[D]) Dependents(field string) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range s.rules {
		for _, dep := range r.DependsOn {
			if dep == field && !seen[r.Field] {
				seen[r.Field] = true
				out = append(out, r.Field)
			}
		}
	}
	return out
}

// Getter reads a string field from a draft.
type Getter[D any] func(D) string

// Required fails when the trimmed value is empty.
func Required[D any](field string, get Getter[D], msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		if strings.TrimSpace(get(d)) == "" {
			return msg
		}
		return ""
	}}
}

// MinLength fails when the value has fewer than n characters. Empty values fail too.
func MinLength[D any](field string, get Getter[D], n int, msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		if utf8.RuneCountInString(strings.TrimSpace(get(d))) < n {
			return msg
		}
		return ""
	}}
}

// MaxLength fails when the value has more than n characters.
func MaxLength[D any](field string, get Getter[D], n int, msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		if utf8.RuneCountInString(get(d)) > n {
			return msg
		}
		return ""
	}}
}

// Email fails when a non-empty value is not an email address.
func Email[D any](field string, get Getter[D], msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		v := get(d)
		if v == "" {
			return ""
		}
		if err := formats.Var(v, "email"); err != nil {
			return msg
		}
		return ""
	}}
}

// Pattern fails when a non-empty value does not match re.
func Pattern[D any](field string, get Getter[D], re *regexp.Regexp, msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		if v := get(d); v != "" && !re.MatchString(v) {
			return msg
		}
		return ""
	}}
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PasswordComplexity fails when a non-empty value is shorter than
// MinPasswordLength or lacks an upper-case letter, a lower-case letter or a digit.
func PasswordComplexity[D any](field string, get Getter[D], msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		v := get(d)
		if v == "" {
			return ""
		}
		if !IsComplexPassword(v) {
			return msg
		}
		return ""
	}}
}

// IsComplexPassword reports whether v satisfies the password policy.
func IsComplexPassword(v string) bool {
	if utf8.RuneCountInString(v) < MinPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range v {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// OneOf fails when the value is not in allowed.
func OneOf[D any](field string, get Getter[D], allowed []string, msg string) Rule[D] {
	return Rule[D]{Field: field, Check: func(d D) string {
		v := get(d)
		for _, a := range allowed {
			if v == a {
				return ""
			}
		}
		return msg
	}}
}

// RequiredWith fails when exactly one of field and other is non-empty. The message is
// attached to field.
func RequiredWith[D any](field string, get Getter[D], other string, getOther Getter[D], msg string) Rule[D] {
	return Rule[D]{Field: field, DependsOn: []string{other}, Check: func(d D) string {
		if (get(d) == "") != (getOther(d) == "") {
			return msg
		}
		return ""
	}}
}

// EqualTo fails when both values are non-empty and differ. The message is attached to field.
func EqualTo[D any](field string, get Getter[D], other string, getOther Getter[D], msg string) Rule[D] {
	return Rule[D]{Field: field, DependsOn: []string{other}, Check: func(d D) string {
		a, b := get(d), getOther(d)
		if a != "" && b != "" && a != b {
			return msg
		}
		return ""
	}}
}

// Custom wraps an arbitrary pure check.
func Custom[D any](field string, dependsOn []string, check func(D) string) Rule[D] {
	return Rule[D]{Field: field, DependsOn: dependsOn, Check: check}
}
