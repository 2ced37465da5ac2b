package feedback

import (
	"mime/multipart"

	"github.com/janisto/huma-dashboard/internal/platform/pagination"
)

// FeedbackCreateInput for POST /feedback with parts subject, message and an
// optional attachment.
type FeedbackCreateInput struct {
	RawBody multipart.Form
}

// FeedbackListInput for GET /feedback
type FeedbackListInput struct {
	pagination.Params
}
