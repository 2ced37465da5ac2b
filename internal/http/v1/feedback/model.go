package feedback

import (
	"github.com/janisto/huma-dashboard/internal/platform/timeutil"
	feedbacksvc "github.com/janisto/huma-dashboard/internal/service/feedback"
)

// Feedback represents a stored feedback entry.
type Feedback struct {
	ID            string        `json:"id"                      doc:"Unique identifier"        example:"3f0c8a52-8f0e-4c52-9a53-6f1d2c0b7e11"`
	Subject       string        `json:"subject"                 doc:"Subject line"             example:"Dark mode request"`
	Message       string        `json:"message"                 doc:"Feedback body"            example:"Please add a dark theme to the dashboard."`
	AttachmentURL string        `json:"attachmentUrl,omitempty" doc:"Public URL of the attachment"`
	CreatedAt     timeutil.Time `json:"createdAt"               doc:"Creation timestamp"       example:"2024-01-15T10:30:00.000Z"`
}

func toHTTPFeedback(f *feedbacksvc.Feedback) Feedback {
	return Feedback{
		ID:            f.ID,
		Subject:       f.Subject,
		Message:       f.Message,
		AttachmentURL: f.AttachmentURL,
		CreatedAt:     timeutil.NewTime(f.CreatedAt),
	}
}
