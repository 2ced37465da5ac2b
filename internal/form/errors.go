package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Controller and submission errors.
var (
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrDisposed           = errors.New("form disposed")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Generic user-facing messages.
const (
	MsgInvalid          = "Please correct the highlighted fields."
	MsgNotAuthenticated = "Not authenticated"
	MsgUnexpected       = "An unexpected error occurred"
	MsgInFlight         = "A submission is already in progress."
)

// Errors maps a field name to its first failing message.
type Errors map[string]string

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ValidationError is returned when a draft fails its schema. It never reaches a collaborator.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessager is implemented by errors that carry a short message safe to show to the user.
type UserMessager interface {
	UserMessage() string
}

// Kind classifies an error for presentation.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuthentication
	KindRemote
	KindConflict
)

// Classify maps err onto the error taxonomy.
func Classify(err error) Kind {
	var ve *ValidationError
	var um UserMessager
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrNotAuthenticated):
		return KindAuthentication
	case errors.Is(err, ErrSubmissionInFlight):
		return KindConflict
	case errors.As(err, &um):
		return KindRemote
	default:
		return KindUnexpected
	}
}

// UserMessage returns the message to surface for err. Authentication failures are
// never detailed and unexpected errors get a generic message.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindValidation:
		return MsgInvalid
	case KindAuthentication:
		return MsgNotAuthenticated
	case KindConflict:
		return MsgInFlight
	case KindRemote:
		var um UserMessager
		errors.As(err, &um)
		return um.UserMessage()
	default:
		return MsgUnexpected
	}
}
