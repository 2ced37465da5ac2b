package profile

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
)

const profilesCollection = "profiles"

// firestoreProfile maps to Firestore document structure.
type firestoreProfile struct {
	Email         string        `firestore:"email"`
	Username      string        `firestore:"username"`
	Firstname     string        `firestore:"first_name"`
	Lastname      string        `firestore:"last_name"`
	DateOfBirth   *time.Time    `firestore:"dob"`
	AvatarURL     string        `firestore:"avatar_url"`
	Notifications Notifications `firestore:"notifications"`
	CreatedAt     time.Time     `firestore:"created_at"`
	UpdatedAt     time.Time     `firestore:"updated_at"`
}

func toFirestore(p *Profile) firestoreProfile {
	return firestoreProfile{
		Email:         p.Email,
		Username:      p.Username,
		Firstname:     p.Firstname,
		Lastname:      p.Lastname,
		DateOfBirth:   p.DateOfBirth,
		AvatarURL:     p.AvatarURL,
		Notifications: p.Notifications,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (fp firestoreProfile) toProfile(userID string) *Profile {
	p := &Profile{
		ID:            userID,
		Email:         fp.Email,
		Username:      fp.Username,
		Firstname:     fp.Firstname,
		Lastname:      fp.Lastname,
		AvatarURL:     fp.AvatarURL,
		Notifications: fp.Notifications,
		CreatedAt:     fp.CreatedAt,
		UpdatedAt:     fp.UpdatedAt,
	}
	p.DateOfBirth = normalizeDate(fp.DateOfBirth)
	return p
}

// FirestoreStore implements Service using Firestore with transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Create creates a new profile using a transaction to prevent duplicates.
func (s *FirestoreStore) Create(ctx context.Context, userID string, params CreateParams) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(userID)
	p := newProfile(userID, params, time.Now().UTC())

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil && doc.Exists() {
			return ErrAlreadyExists
		}
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Set(docRef, toFirestore(p))
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "create", userID, "profile", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "create", userID, "profile", userID, applog.AuditSuccess, nil)
	return p, nil
}

// Get retrieves a profile by user ID.
func (s *FirestoreStore) Get(ctx context.Context, userID string) (*Profile, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fp.toProfile(userID), nil
}

// Update replaces the profile document inside a transaction.
func (s *FirestoreStore) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(userID)

	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}

		p := fp.toProfile(userID)
		params.apply(p, time.Now().UTC())
		if err := tx.Set(docRef, toFirestore(p)); err != nil {
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

// Delete removes a profile using a transaction to ensure it exists.
func (s *FirestoreStore) Delete(ctx context.Context, userID string) error {
	docRef := s.client.Collection(profilesCollection).Doc(userID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(docRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(docRef)
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "delete", userID, "profile", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}

	applog.LogAuditEvent(ctx, "delete", userID, "profile", userID, applog.AuditSuccess, nil)
	return nil
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
