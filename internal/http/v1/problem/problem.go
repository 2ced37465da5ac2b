// Package problem maps form and service errors onto huma error responses.
package problem

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-dashboard/internal/form"
	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
	"github.com/janisto/huma-dashboard/internal/service/account"
)

// Validation builds a 422 with one detail per failing field.
func Validation(errs form.Errors) error {
	details := make([]error, 0, len(errs))
	for _, field := range errs.Fields() {
		details = append(details, &huma.ErrorDetail{
			Location: "body." + field,
			Message:  errs[field],
		})
	}
	return huma.Error422UnprocessableEntity("validation failed", details...)
}

// Field builds a 422 for a single field.
func Field(field, message string) error {
	return Validation(form.Errors{field: message})
}

// FromSubmit converts the error of a form submission. Remote failures carry
// the failing step's short message; unexpected errors are logged and hidden.
func FromSubmit(ctx context.Context, err error) error {
	var ve *form.ValidationError
	if errors.As(err, &ve) {
		return Validation(ve.Fields)
	}
	if errors.Is(err, account.ErrNoSession) {
		return huma.Error401Unauthorized("not authenticated")
	}
	switch form.Classify(err) {
	case form.KindAuthentication:
		return huma.Error401Unauthorized("not authenticated")
	case form.KindConflict:
		return huma.Error409Conflict(form.MsgInFlight)
	case form.KindRemote:
		return huma.Error502BadGateway(form.UserMessage(err))
	default:
		applog.LogError(ctx, "unexpected error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
