// Package settings instantiates the generic form controller for the profile,
// feedback and notification forms and keeps one live instance per user.
package settings

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
	"github.com/janisto/huma-dashboard/internal/pipeline"
	"github.com/janisto/huma-dashboard/internal/profilecache"
	"github.com/janisto/huma-dashboard/internal/service/account"
	"github.com/janisto/huma-dashboard/internal/service/feedback"
	"github.com/janisto/huma-dashboard/internal/service/profile"
	"github.com/janisto/huma-dashboard/internal/service/storage"
	"github.com/janisto/huma-dashboard/internal/upload"
)

// Deps are the collaborators shared by all forms.
type Deps struct {
	Profiles         profile.Service
	Feedback         feedback.Service
	Accounts         account.Service
	Storage          storage.Store
	Cache            *profilecache.Cache
	AvatarPolicy     upload.Policy
	AttachmentPolicy upload.Policy
	// Now is the clock the schemas compare dates against and sessions track
	// access with. Defaults to time.Now.
	Now func() time.Time
	// IdleTTL is how long a user's forms survive without access.
	IdleTTL time.Duration
}

// DefaultIdleTTL applies when Deps.IdleTTL is zero.
const DefaultIdleTTL = 30 * time.Minute

func (d Deps) withDefaults() Deps {
	if d.AvatarPolicy.MaxBytes == 0 {
		d.AvatarPolicy = upload.AvatarPolicy
	}
	if d.AttachmentPolicy.MaxBytes == 0 {
		d.AttachmentPolicy = upload.AttachmentPolicy
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.IdleTTL <= 0 {
		d.IdleTTL = DefaultIdleTTL
	}
	if d.Cache == nil && d.Profiles != nil {
		d.Cache = profilecache.New(d.Profiles)
	}
	return d
}

// run executes p and logs the outcome. The submission is detached from ctx
// cancellation so a started submission always runs to completion.
func run[S any](ctx context.Context, formName, userID string, p *pipeline.Pipeline[S], state *S) error {
	ctx = context.WithoutCancel(ctx)
	rep, err := p.Run(ctx, state)
	if err != nil {
		var se *pipeline.StepError
		fields := []zap.Field{zap.String("form", formName), zap.String("user_id", userID)}
		if errors.As(err, &se) {
			fields = append(fields, zap.String("step", se.Step), zap.Strings("completed", se.Completed))
		}
		applog.LogError(ctx, "form submission failed", err, fields...)
		applog.LogAuditEvent(ctx, "submit", userID, formName, userID, applog.AuditFailure,
			map[string]any{"completed": rep.Completed})
		return err
	}
	applog.LogAuditEvent(ctx, "submit", userID, formName, userID, applog.AuditSuccess,
		map[string]any{"completed": rep.Completed, "skipped": rep.Skipped})
	return nil
}
