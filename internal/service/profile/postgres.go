package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
	"github.com/janisto/huma-dashboard/internal/platform/postgres"
)

const uniqueViolation = "23505"

const selectProfile = `SELECT user_id, email, username, first_name, last_name, dob, avatar_url,
       notifications, created_at, updated_at
  FROM profiles WHERE user_id = $1`

// PostgresStore implements Service on the profiles table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open, migrated database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new profile. A primary key conflict maps to ErrAlreadyExists.
func (s *PostgresStore) Create(ctx context.Context, userID string, params CreateParams) (*Profile, error) {
	p := newProfile(userID, params, time.Now().UTC())
	notif, err := json.Marshal(p.Notifications)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, email, username, first_name, last_name, dob, avatar_url,
		                       notifications, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Email, p.Username, p.Firstname, p.Lastname, nullDate(p.DateOfBirth),
		nullString(p.AvatarURL), notif, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = ErrAlreadyExists
		}
		applog.LogAuditEvent(ctx, "create", userID, "profile", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "create", userID, "profile", userID, applog.AuditSuccess, nil)
	return p, nil
}

// Get retrieves a profile by user ID.
func (s *PostgresStore) Get(ctx context.Context, userID string) (*Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, selectProfile, userID))
}

// Update locks the row, applies params and writes the full record back.
func (s *PostgresStore) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	var result *Profile
	err := postgres.WithTx(ctx, s.db, func(ctx context.Context, tx postgres.DBTX) error {
		p, err := scanProfile(tx.QueryRowContext(ctx, selectProfile+" FOR UPDATE", userID))
		if err != nil {
			return err
		}
		params.apply(p, time.Now().UTC())
		notif, err := json.Marshal(p.Notifications)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles
			    SET first_name = $2, last_name = $3, dob = $4, avatar_url = $5,
			        notifications = $6, updated_at = $7
			  WHERE user_id = $1`,
			userID, p.Firstname, p.Lastname, nullDate(p.DateOfBirth), nullString(p.AvatarURL),
			notif, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "update", userID, "profile", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "update", userID, "profile", userID, applog.AuditSuccess, nil)
	return result, nil
}

// Delete removes a profile.
func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err == nil {
		var n int64
		if n, err = res.RowsAffected(); err == nil && n == 0 {
			err = ErrNotFound
		}
	}
	if err != nil {
		applog.LogAuditEvent(ctx, "delete", userID, "profile", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}

	applog.LogAuditEvent(ctx, "delete", userID, "profile", userID, applog.AuditSuccess, nil)
	return nil
}

func scanProfile(row *sql.Row) (*Profile, error) {
	var (
		p      Profile
		dob    sql.NullTime
		avatar sql.NullString
		notif  []byte
	)
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.Firstname, &p.Lastname, &dob, &avatar,
		&notif, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if dob.Valid {
		p.DateOfBirth = normalizeDate(&dob.Time)
	}
	p.AvatarURL = avatar.String
	p.Notifications = DefaultNotifications()
	if len(notif) > 0 {
		if err := json.Unmarshal(notif, &p.Notifications); err != nil {
			return nil, fmt.Errorf("decode notifications: %w", err)
		}
	}
	return &p, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Compile-time interface check
var _ Service = (*PostgresStore)(nil)
