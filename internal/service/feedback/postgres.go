package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
)

// PostgresStore implements Service on the feedbacks table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open, migrated database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert adds one row.
func (s *PostgresStore) Insert(ctx context.Context, userID string, params InsertParams) (*Feedback, error) {
	f := newFeedback(userID, params, time.Now().UTC())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedbacks (id, user_id, subject, message, attachment_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.UserID, f.Subject, f.Message,
		sql.NullString{String: f.AttachmentURL, Valid: f.AttachmentURL != ""}, f.CreatedAt,
	)
	if err != nil {
		applog.LogAuditEvent(ctx, "create", userID, "feedback", f.ID, applog.AuditFailure,
			map[string]any{"error": "internal_error"})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "create", userID, "feedback", f.ID, applog.AuditSuccess,
		map[string]any{"attachment": f.AttachmentURL != ""})
	return f, nil
}

// List reads one page using the (created_at, id) keyset.
func (s *PostgresStore) List(ctx context.Context, userID string, params ListParams) ([]Feedback, error) {
	args := []any{userID}
	query := `SELECT id, user_id, subject, message, attachment_url, created_at
		FROM feedbacks WHERE user_id = $1`
	if !params.After.IsZero() {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, params.After.Time, params.After.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := make([]Feedback, 0)
	for rows.Next() {
		var (
			f          Feedback
			attachment sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.Subject, &f.Message, &attachment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		f.AttachmentURL = attachment.String
		f.CreatedAt = f.CreatedAt.UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

// Compile-time interface check
var _ Service = (*PostgresStore)(nil)
