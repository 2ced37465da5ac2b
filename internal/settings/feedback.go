package settings

import (
	"context"

	"github.com/google/uuid"

	"github.com/janisto/huma-dashboard/internal/form"
	"github.com/janisto/huma-dashboard/internal/pipeline"
	"github.com/janisto/huma-dashboard/internal/service/feedback"
	"github.com/janisto/huma-dashboard/internal/service/storage"
	"github.com/janisto/huma-dashboard/internal/upload"
)

// Feedback form fields.
const (
	FieldSubject    = "subject"
	FieldMessage    = "message"
	FieldAttachment = "attachment"
)

// Feedback form messages.
const (
	MsgSubjectTooShort = "Subject must be at least 10 characters."
	MsgSubjectTooLong  = "Subject must be at most 200 characters."
	MsgMessageTooShort = "Message must be at least 10 characters."
	MsgMessageTooLong  = "Message must be at most 5000 characters."
)

// Feedback pipeline steps.
const (
	StepUploadAttachment = "upload-attachment"
	StepInsertFeedback   = "insert-feedback"
)

// FeedbackDraft is the feedback form's editable state.
type FeedbackDraft struct {
	Subject    string
	Message    string
	Attachment *upload.File
}

// FeedbackSchema returns the validation rules of the feedback form.
func FeedbackSchema(attachment upload.Policy) *form.Schema[FeedbackDraft] {
	subject := func(d FeedbackDraft) string { return d.Subject }
	message := func(d FeedbackDraft) string { return d.Message }
	return form.NewSchema(
		form.MinLength(FieldSubject, subject, 10, MsgSubjectTooShort),
		form.MaxLength(FieldSubject, subject, 200, MsgSubjectTooLong),
		form.MinLength(FieldMessage, message, 10, MsgMessageTooShort),
		form.MaxLength(FieldMessage, message, 5000, MsgMessageTooLong),
		form.Custom(FieldAttachment, nil, func(d FeedbackDraft) string {
			if d.Attachment == nil {
				return ""
			}
			return rejectionMessage(attachment.Check(d.Attachment))
		}),
	)
}

type feedbackRun struct {
	userID        string
	draft         FeedbackDraft
	attachmentURL string
	record        *feedback.Feedback
}

// FeedbackForm is the feedback form of one user.
type FeedbackForm struct {
	*form.Controller[FeedbackDraft, *feedback.Feedback]
	userID string
}

// NewFeedbackForm creates an empty feedback form for userID.
func NewFeedbackForm(userID string, deps Deps) *FeedbackForm {
	deps = deps.withDefaults()
	steps := feedbackPipeline(deps)
	return &FeedbackForm{
		userID: userID,
		Controller: form.New(FeedbackDraft{}, form.Options[FeedbackDraft, *feedback.Feedback]{
			Schema: FeedbackSchema(deps.AttachmentPolicy),
			Submit: func(ctx context.Context, d FeedbackDraft) (*feedback.Feedback, error) {
				state := &feedbackRun{userID: userID, draft: d}
				if err := run(ctx, "feedback", userID, steps, state); err != nil {
					return nil, err
				}
				return state.record, nil
			},
			Reset: func(FeedbackDraft, *feedback.Feedback) FeedbackDraft {
				return FeedbackDraft{}
			},
		}),
	}
}

func feedbackPipeline(deps Deps) *pipeline.Pipeline[feedbackRun] {
	return pipeline.New(
		pipeline.Step[feedbackRun]{
			Name:    StepUploadAttachment,
			Message: "Failed to upload attachment.",
			Skip:    func(s *feedbackRun) bool { return s.draft.Attachment == nil },
			Run: func(ctx context.Context, s *feedbackRun) error {
				a := s.draft.Attachment
				path := storage.AttachmentPath(s.userID, uuid.NewString(), a.Name)
				if err := deps.Storage.Upload(ctx, path, a.Data, a.MimeType(), storage.UploadOptions{}); err != nil {
					return err
				}
				s.attachmentURL = deps.Storage.PublicURL(path)
				return nil
			},
		},
		pipeline.Step[feedbackRun]{
			Name:    StepInsertFeedback,
			Message: "Failed to submit feedback.",
			Run: func(ctx context.Context, s *feedbackRun) error {
				rec, err := deps.Feedback.Insert(ctx, s.userID, feedback.InsertParams{
					Subject:       s.draft.Subject,
					Message:       s.draft.Message,
					AttachmentURL: s.attachmentURL,
				})
				if err != nil {
					return err
				}
				s.record = rec
				return nil
			},
		},
	)
}

// Fill replaces the whole draft, marking every field touched.
func (f *FeedbackForm) Fill(d FeedbackDraft) error {
	for _, field := range []string{FieldSubject, FieldMessage, FieldAttachment} {
		if err := f.Set(field, func(cur *FeedbackDraft) { *cur = d }); err != nil {
			return err
		}
	}
	return nil
}
