// Package upload validates user file selections and builds inline previews.
package upload

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// Rejection reasons.
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// File is a selected file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file size in bytes.
func (f *File) Size() int64 { return int64(len(f.Data)) }

// MimeType returns the declared content type, or the sniffed one when the
// client did not declare a specific type.
func (f *File) MimeType() string {
	ct := strings.TrimSpace(f.ContentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(f.Data)
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
	}
	return strings.ToLower(ct)
}

// Policy bounds the size and type of accepted files.
type Policy struct {
	MaxBytes     int64
	AllowedTypes []string
	// AllowImages accepts any image/* type in addition to AllowedTypes.
	AllowImages bool
	// Extensions is a human readable list used in rejection messages.
	Extensions string
}

// AvatarPolicy accepts images up to 2 MiB.
var AvatarPolicy = Policy{
	MaxBytes:    2 * 1024 * 1024,
	AllowImages: true,
	Extensions:  "image",
}

// AttachmentPolicy accepts common images and PDFs up to 4 MiB.
var AttachmentPolicy = Policy{
	MaxBytes:     4 * 1024 * 1024,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
	Extensions:   ".jpg, .jpeg, .png, .webp, .pdf",
}

// WithMaxBytes returns a copy of p with a different ceiling. Non-positive n keeps p's.
func (p Policy) WithMaxBytes(n int64) Policy {
	if n > 0 {
		p.MaxBytes = n
	}
	return p
}

// RejectionError describes why a file was refused.
type RejectionError struct {
	Reason  error
	Message string
}

func (e *RejectionError) Error() string { return e.Reason.Error() + ": " + e.Message }
func (e *RejectionError) Unwrap() error { return e.Reason }

// Check validates f against the policy before any upload attempt.
func (p Policy) Check(f *File) error {
	if f == nil || len(f.Data) == 0 {
		return &RejectionError{Reason: ErrEmptyFile, Message: "The selected file is empty."}
	}
	if p.MaxBytes > 0 && f.Size() > p.MaxBytes {
		return &RejectionError{Reason: ErrTooLarge, Message: fmt.Sprintf("Max file size is %s.", FormatBytes(p.MaxBytes, 2))}
	}
	if !p.Accepts(f.MimeType()) {
		return &RejectionError{Reason: ErrUnsupportedType, Message: p.typeMessage()}
	}
	return nil
}

// Accepts reports whether mimeType is allowed.
func (p Policy) Accepts(mimeType string) bool {
	if p.AllowImages && strings.HasPrefix(mimeType, "image/") {
		return true
	}
	for _, t := range p.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

func (p Policy) typeMessage() string {
	if p.AllowImages && len(p.AllowedTypes) == 0 {
		return "Only image files are accepted."
	}
	return fmt.Sprintf("Only %s files are accepted.", p.Extensions)
}

// FromHeader reads a multipart file part. At most limit+1 bytes are read so an
// oversized part still fails Check without being fully buffered.
func FromHeader(fh *multipart.FileHeader, limit int64) (*File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	var r io.Reader = src
	if limit > 0 {
		r = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return &File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// FromForm reads the first file stored under key, or returns nil when the
// form carries none.
func FromForm(form *multipart.Form, key string, limit int64) (*File, error) {
	if form == nil || len(form.File[key]) == 0 {
		return nil, nil
	}
	return FromHeader(form.File[key][0], limit)
}

// FormValue returns the first value stored under key and whether it was sent.
func FormValue(form *multipart.Form, key string) (string, bool) {
	if form == nil || len(form.Value[key]) == 0 {
		return "", false
	}
	return form.Value[key][0], true
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with 1024-based units, e.g. "4 MB" or "1.5 KB".
func FormatBytes(n int64, decimals int) string {
	if n <= 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	scale := math.Pow(10, float64(decimals))
	v = math.Round(v*scale) / scale
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}
