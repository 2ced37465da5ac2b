// Package config loads runtime settings from the environment, optionally seeded
// from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Object storage backends.
const (
	StorageGCS    = "gcs"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// DefaultAvatarMaxBytes is the avatar upload ceiling (2 MiB).
const DefaultAvatarMaxBytes int64 = 2 << 20

// DefaultSessionIdleTTL is how long an untouched form session is kept.
const DefaultSessionIdleTTL = 30 * time.Minute

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Config holds runtime settings for the dashboard API.
type Config struct {
	Port     string
	LogLevel string

	// Firebase project and credentials. Credentials are optional when running
	// on GCP or against the emulators.
	FirebaseProjectID            string
	GoogleApplicationCredentials string
	FirebaseAPIKey               string
	IdentityToolkitURL           string
	SiteURL                      string

	StoreBackend string
	DatabaseDSN  string

	StorageBackend string
	StorageBucket  string
	PublicBaseURL  string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	AvatarMaxBytes int64
	SessionIdleTTL time.Duration
}

// Load reads .env (when present) and the process environment. Variables
// already set in the environment take precedence over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                         getenv("PORT", "8080"),
		LogLevel:                     strings.ToLower(getenv("LOG_LEVEL", "info")),
		FirebaseProjectID:            firstEnv("FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
		GoogleApplicationCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseAPIKey:               os.Getenv("FIREBASE_API_KEY"),
		IdentityToolkitURL:           os.Getenv("IDENTITY_TOOLKIT_URL"),
		SiteURL:                      getenv("SITE_URL", "http://localhost:3000"),
		StoreBackend:                 strings.ToLower(getenv("STORE_BACKEND", BackendFirestore)),
		DatabaseDSN:                  os.Getenv("DATABASE_DSN"),
		StorageBackend:               strings.ToLower(getenv("STORAGE_BACKEND", StorageGCS)),
		StorageBucket:                os.Getenv("STORAGE_BUCKET"),
		PublicBaseURL:                os.Getenv("PUBLIC_BASE_URL"),
		S3Region:                     getenv("S3_REGION", "us-east-1"),
		S3Endpoint:                   os.Getenv("S3_ENDPOINT"),
		S3AccessKey:                  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:                  os.Getenv("S3_SECRET_KEY"),
		AvatarMaxBytes:               DefaultAvatarMaxBytes,
		SessionIdleTTL:               DefaultSessionIdleTTL,
	}

	if v := os.Getenv("AVATAR_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("AVATAR_MAX_BYTES must be a positive integer, got %q", v)
		}
		cfg.AvatarMaxBytes = n
	}
	if v := os.Getenv("SESSION_IDLE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("SESSION_IDLE_TTL must be a positive duration, got %q", v)
		}
		cfg.SessionIdleTTL = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}

	switch c.StoreBackend {
	case BackendFirestore, BackendMemory:
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageGCS:
		if c.StorageBucket == "" && c.FirebaseProjectID == "" {
			return errors.New("STORAGE_BUCKET or FIREBASE_PROJECT_ID is required when STORAGE_BACKEND=gcs")
		}
	case StorageS3:
		if c.StorageBucket == "" {
			return errors.New("STORAGE_BUCKET is required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// Bucket returns the configured bucket, defaulting to the Firebase project's
// default storage bucket.
func (c *Config) Bucket() string {
	if c.StorageBucket != "" {
		return c.StorageBucket
	}
	return c.FirebaseProjectID + ".appspot.com"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
