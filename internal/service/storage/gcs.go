package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
)

// GCSStore implements Store on a Cloud Storage bucket, typically the Firebase
// default bucket.
type GCSStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	baseURL    string
}

// NewGCSStore wraps bucket. When publicBaseURL is empty, URLs use the Firebase
// Storage download endpoint.
func NewGCSStore(bucket *gcs.BucketHandle, bucketName, publicBaseURL string) *GCSStore {
	return &GCSStore{bucket: bucket, bucketName: bucketName, baseURL: publicBaseURL}
}

// Upload writes data to path. Without Overwrite the write is conditional on the
// object not existing.
func (s *GCSStore) Upload(ctx context.Context, path string, data []byte, contentType string, opts UploadOptions) error {
	if err := validatePath(path); err != nil {
		return err
	}
	obj := s.bucket.Object(path)
	if !opts.Overwrite {
		obj = obj.If(gcs.Conditions{DoesNotExist: true})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return s.fail(ctx, path, fmt.Errorf("write object: %w", err))
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			err = ErrAlreadyExists
		}
		return s.fail(ctx, path, err)
	}

	applog.LogAuditEvent(ctx, "upload", "", "object", path, applog.AuditSuccess,
		map[string]any{"bytes": len(data), "overwrite": opts.Overwrite})
	return nil
}

func (s *GCSStore) fail(ctx context.Context, path string, err error) error {
	applog.LogAuditEvent(ctx, "upload", "", "object", path, applog.AuditFailure,
		map[string]any{"error": categorizeError(err)})
	return err
}

// PublicURL returns the download URL of path.
func (s *GCSStore) PublicURL(path string) string {
	if s.baseURL != "" {
		return joinURL(s.baseURL, path)
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucketName, url.PathEscape(path))
}

// Compile-time interface check
var _ Store = (*GCSStore)(nil)
