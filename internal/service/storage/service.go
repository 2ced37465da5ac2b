// Package storage uploads user files to object storage and resolves their
// public URLs.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Service errors
var (
	ErrAlreadyExists = errors.New("object already exists")
	ErrInvalidPath   = errors.New("invalid object path")
)

// UploadOptions controls write semantics.
type UploadOptions struct {
	// Overwrite replaces an existing object at the same path. When false an
	// existing object makes Upload fail with ErrAlreadyExists.
	Overwrite bool
}

// Store is the object storage collaborator.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, opts UploadOptions) error
	PublicURL(path string) string
}

// AvatarPath is the deterministic object path of a user's avatar.
func AvatarPath(userID string) string {
	return "avatars/" + userID
}

// AttachmentPath is the object path of a feedback attachment.
func AttachmentPath(userID, id, filename string) string {
	return "feedback/" + userID + "/" + id + "-" + SanitizeName(filename)
}

// SanitizeName keeps the base name of filename and replaces characters that are
// awkward in object keys.
func SanitizeName(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func validatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return ErrInvalidPath
	}
	return nil
}

// joinURL appends an escaped object path to base.
func joinURL(base, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidPath):
		return "invalid_path"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal_error"
	}
}
