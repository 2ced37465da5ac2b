// Package feedback stores feedback submitted by signed-in users.
package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/janisto/huma-dashboard/internal/platform/pagination"
)

// Feedback is one stored submission.
type Feedback struct {
	ID            string
	UserID        string
	Subject       string
	Message       string
	AttachmentURL string
	CreatedAt     time.Time
}

// InsertParams for storing feedback.
type InsertParams struct {
	Subject       string
	Message       string
	AttachmentURL string
}

// ListParams selects a page of one user's feedback, newest first. Rows at or
// before After are skipped; Limit 0 means no limit.
type ListParams struct {
	After pagination.Key
	Limit int
}

// Key returns the keyset position of f.
func (f Feedback) Key() pagination.Key {
	return pagination.Key{Time: f.CreatedAt, ID: f.ID}
}

// Service defines feedback operations. Subject and Message are trimmed.
type Service interface {
	Insert(ctx context.Context, userID string, params InsertParams) (*Feedback, error)
	List(ctx context.Context, userID string, params ListParams) ([]Feedback, error)
}

func newFeedback(userID string, params InsertParams, now time.Time) *Feedback {
	return &Feedback{
		ID:            uuid.NewString(),
		UserID:        userID,
		Subject:       strings.TrimSpace(params.Subject),
		Message:       strings.TrimSpace(params.Message),
		AttachmentURL: params.AttachmentURL,
		CreatedAt:     now,
	}
}
