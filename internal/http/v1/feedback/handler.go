package feedback

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-dashboard/internal/http/v1/problem"
	"github.com/janisto/huma-dashboard/internal/platform/auth"
	"github.com/janisto/huma-dashboard/internal/platform/pagination"
	feedbacksvc "github.com/janisto/huma-dashboard/internal/service/feedback"
	"github.com/janisto/huma-dashboard/internal/settings"
	"github.com/janisto/huma-dashboard/internal/upload"
)

const cursorType = "feedback"

// Register registers feedback endpoints.
func Register(api huma.API, sessions *settings.Sessions, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-feedback",
		Method:        http.MethodPost,
		Path:          "/feedback",
		Summary:       "Submit feedback",
		Description:   "Submits the feedback form. An attachment is uploaded before the entry is stored.",
		Tags:          []string{"Feedback"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  8 << 20,
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, input *FeedbackCreateInput) (*FeedbackCreateOutput, error) {
		user := auth.UserFromContext(ctx)
		limit := sessions.Deps().AttachmentPolicy.MaxBytes

		subject, _ := upload.FormValue(&input.RawBody, settings.FieldSubject)
		message, _ := upload.FormValue(&input.RawBody, settings.FieldMessage)
		attachment, err := upload.FromForm(&input.RawBody, settings.FieldAttachment, limit)
		if err != nil {
			return nil, huma.Error400BadRequest("unreadable attachment")
		}

		f := sessions.Feedback(user.UID)
		_, record, err := f.SubmitEdits(ctx, func() error {
			return f.Fill(settings.FeedbackDraft{
				Subject:    subject,
				Message:    message,
				Attachment: attachment,
			})
		})
		if err != nil {
			return nil, problem.FromSubmit(ctx, err)
		}
		return &FeedbackCreateOutput{Body: toHTTPFeedback(record)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-feedback",
		Method:      http.MethodGet,
		Path:        "/feedback",
		Summary:     "List own feedback",
		Description: "Returns the caller's feedback newest first. Follow the Link header for the next page.",
		Tags:        []string{"Feedback"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, input *FeedbackListInput) (*FeedbackListOutput, error) {
		user := auth.UserFromContext(ctx)

		after, err := pagination.DecodeKey(input.Cursor, cursorType)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid cursor format")
		}
		limit := input.DefaultLimit()

		items, err := sessions.Deps().Feedback.List(ctx, user.UID, feedbacksvc.ListParams{
			After: after,
			Limit: limit + 1,
		})
		if err != nil {
			return nil, problem.FromSubmit(ctx, err)
		}
		page, next := pagination.Page(items, limit, cursorType, feedbacksvc.Feedback.Key)

		out := &FeedbackListOutput{
			Link: pagination.BuildLinkHeader(prefix+"/feedback", url.Values{"limit": {strconv.Itoa(limit)}}, next),
			Body: ListData{Items: make([]Feedback, 0, len(page)), NextCursor: next},
		}
		for i := range page {
			out.Body.Items = append(out.Body.Items, toHTTPFeedback(&page[i]))
		}
		return out, nil
	})
}
