package settings

import (
	"context"

	"github.com/janisto/huma-dashboard/internal/form"
	"github.com/janisto/huma-dashboard/internal/pipeline"
	"github.com/janisto/huma-dashboard/internal/service/profile"
)

// Notification form fields.
const FieldPushNotifications = "pushNotifications"

// MsgPushInvalid is shown for an unknown push level.
const MsgPushInvalid = "Please select a notification type."

// Notification pipeline steps.
const StepUpdateNotifications = "update-notifications"

// NotificationsForm edits the user's notification preferences.
type NotificationsForm struct {
	*form.Controller[profile.Notifications, *profile.Profile]
	userID string
}

// NotificationsSchema returns the validation rules of the notifications form.
func NotificationsSchema() *form.Schema[profile.Notifications] {
	return form.NewSchema(
		form.OneOf(FieldPushNotifications,
			func(n profile.Notifications) string { return n.PushNotifications },
			[]string{profile.PushAll, profile.PushMentions, profile.PushNone},
			MsgPushInvalid),
	)
}

type notificationsRun struct {
	userID string
	draft  profile.Notifications
	record *profile.Profile
}

// NewNotificationsForm creates the form for userID starting from current.
func NewNotificationsForm(userID string, current *profile.Profile, deps Deps) *NotificationsForm {
	deps = deps.withDefaults()
	steps := pipeline.New(
		pipeline.Step[notificationsRun]{
			Name:    StepUpdateNotifications,
			Message: "Failed to update notification settings.",
			Run: func(ctx context.Context, s *notificationsRun) error {
				_, err := deps.Profiles.Update(ctx, s.userID, profile.UpdateParams{Notifications: &s.draft})
				return err
			},
		},
		pipeline.Step[notificationsRun]{
			Name:    StepRefreshProfile,
			Message: "Settings saved, but reloading them failed.",
			Run: func(ctx context.Context, s *notificationsRun) error {
				p, err := deps.Cache.Refresh(ctx, s.userID)
				if err != nil {
					return err
				}
				s.record = p
				return nil
			},
		},
	)
	return &NotificationsForm{
		userID: userID,
		Controller: form.New(current.Notifications, form.Options[profile.Notifications, *profile.Profile]{
			Schema: NotificationsSchema(),
			Submit: func(ctx context.Context, n profile.Notifications) (*profile.Profile, error) {
				state := &notificationsRun{userID: userID, draft: n}
				if err := run(ctx, "notifications", userID, steps, state); err != nil {
					return nil, err
				}
				return state.record, nil
			},
			Reset: func(_ profile.Notifications, p *profile.Profile) profile.Notifications {
				return p.Notifications
			},
		}),
	}
}
