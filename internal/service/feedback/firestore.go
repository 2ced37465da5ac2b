package feedback

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
)

const feedbacksCollection = "feedbacks"

type firestoreFeedback struct {
	UserID        string    `firestore:"user_id"`
	Subject       string    `firestore:"subject"`
	Message       string    `firestore:"message"`
	AttachmentURL string    `firestore:"attachment_url,omitempty"`
	CreatedAt     time.Time `firestore:"created_at"`
}

// FirestoreStore implements Service on the feedbacks collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Insert creates a new document keyed by a fresh UUID.
func (s *FirestoreStore) Insert(ctx context.Context, userID string, params InsertParams) (*Feedback, error) {
	f := newFeedback(userID, params, time.Now().UTC())
	_, err := s.client.Collection(feedbacksCollection).Doc(f.ID).Create(ctx, firestoreFeedback{
		UserID:        f.UserID,
		Subject:       f.Subject,
		Message:       f.Message,
		AttachmentURL: f.AttachmentURL,
		CreatedAt:     f.CreatedAt,
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "create", userID, "feedback", f.ID, applog.AuditFailure,
			map[string]any{"error": "internal_error"})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "create", userID, "feedback", f.ID, applog.AuditSuccess,
		map[string]any{"attachment": f.AttachmentURL != ""})
	return f, nil
}

// List queries the user's documents newest first. The query needs a composite
// index on (user_id, created_at desc, __name__ desc).
func (s *FirestoreStore) List(ctx context.Context, userID string, params ListParams) ([]Feedback, error) {
	q := s.client.Collection(feedbacksCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)
	if !params.After.IsZero() {
		q = q.StartAfter(params.After.Time, params.After.ID)
	}
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	out := make([]Feedback, 0, len(docs))
	for _, doc := range docs {
		var ff firestoreFeedback
		if err := doc.DataTo(&ff); err != nil {
			return nil, fmt.Errorf("decode feedback %s: %w", doc.Ref.ID, err)
		}
		out = append(out, Feedback{
			ID:            doc.Ref.ID,
			UserID:        ff.UserID,
			Subject:       ff.Subject,
			Message:       ff.Message,
			AttachmentURL: ff.AttachmentURL,
			CreatedAt:     ff.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
