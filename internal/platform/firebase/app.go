package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config holds Firebase configuration.
type Config struct {
	ProjectID                    string
	GoogleApplicationCredentials string // path to a service account JSON file (optional)
	StorageBucket                string
	WithStorage                  bool
	WithFirestore                bool
}

// Clients holds initialized Firebase clients. Firestore and Storage are nil
// unless requested in Config.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

// InitializeClients sets up the Firebase app and returns the requested clients.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.GoogleApplicationCredentials != "" {
		creds, err := os.ReadFile(cfg.GoogleApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	clients := &Clients{}
	if clients.Auth, err = app.Auth(ctx); err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}

	if cfg.WithFirestore {
		if clients.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
	}

	if cfg.WithStorage {
		sc, err := app.Storage(ctx)
		if err != nil {
			_ = clients.Close()
			return nil, fmt.Errorf("firebase storage: %w", err)
		}
		if clients.Bucket, err = sc.DefaultBucket(); err != nil {
			_ = clients.Close()
			return nil, fmt.Errorf("default bucket: %w", err)
		}
	}

	return clients, nil
}

// Close closes the Firestore client when one was opened.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
