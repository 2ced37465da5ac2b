package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func pngFile(size int) *File {
	data := make([]byte, size)
	copy(data, pngHeader)
	return &File{Name: "avatar.png", ContentType: "image/png", Data: data}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:               "0 Bytes",
		512:             "512 Bytes",
		1536:            "1.5 KB",
		4 * 1024 * 1024: "4 MB",
		2 * 1024 * 1024: "2 MB",
		1234567:         "1.18 MB",
	}
	for n, want := range cases {
		if got := FormatBytes(n, 2); got != want {
			t.Fatalf("FormatBytes(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestPolicyCheck(t *testing.T) {
	if err := AvatarPolicy.Check(pngFile(500 * 1024)); err != nil {
		t.Fatalf("expected 500KB png accepted, got %v", err)
	}
	err := AvatarPolicy.Check(pngFile(3 * 1024 * 1024))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	var re *RejectionError
	if !errors.As(err, &re) || re.Message != "Max file size is 2 MB." {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if err := AvatarPolicy.Check(&File{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if err := AvatarPolicy.Check(&File{Name: "a.png"}); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestAttachmentPolicy(t *testing.T) {
	pdf := &File{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}
	if err := AttachmentPolicy.Check(pdf); err != nil {
		t.Fatalf("expected pdf accepted, got %v", err)
	}
	gif := &File{Name: "a.gif", ContentType: "image/gif", Data: []byte("GIF89a")}
	err := AttachmentPolicy.Check(gif)
	var re *RejectionError
	if !errors.As(err, &re) || re.Message != "Only .jpg, .jpeg, .png, .webp, .pdf files are accepted." {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestMimeTypeSniffsUndeclared(t *testing.T) {
	f := &File{Name: "x", ContentType: "application/octet-stream", Data: pngFile(64).Data}
	if got := f.MimeType(); got != "image/png" {
		t.Fatalf("expected sniffed image/png, got %q", got)
	}
	f = &File{Name: "x", ContentType: "image/PNG; charset=binary", Data: []byte("x")}
	if got := f.MimeType(); got != "image/png" {
		t.Fatalf("expected normalized declared type, got %q", got)
	}
}

func TestWithMaxBytes(t *testing.T) {
	p := AvatarPolicy.WithMaxBytes(1024)
	if p.MaxBytes != 1024 || AvatarPolicy.MaxBytes != 2*1024*1024 {
		t.Fatal("expected copy with new ceiling")
	}
	if AvatarPolicy.WithMaxBytes(0).MaxBytes != AvatarPolicy.MaxBytes {
		t.Fatal("expected zero to keep ceiling")
	}
}

func TestBuildPreview(t *testing.T) {
	p := BuildPreview(&File{Name: "a.png", ContentType: "image/png", Data: []byte("abc")})
	if p.Payload != "data:image/png;base64,YWJj" || p.SizeBytes != 3 || p.Size != "3 Bytes" {
		t.Fatalf("unexpected preview: %+v", p)
	}
	p = BuildPreview(&File{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	if p.Payload != "" || p.MimeType != "application/pdf" {
		t.Fatalf("expected no payload for pdf, got %+v", p)
	}
}

func TestSelectionAcceptsAndPreviews(t *testing.T) {
	s := NewSelection(AvatarPolicy, "https://cdn/old.png")
	ch, err := s.Select(pngFile(500 * 1024))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := <-ch
	if !strings.HasPrefix(p.Payload, "data:image/png;base64,") {
		t.Fatalf("unexpected payload prefix: %.40s", p.Payload)
	}
	if got, ok := s.Preview(); !ok || got.Name != "avatar.png" {
		t.Fatalf("expected stored preview, got %+v", got)
	}
	if s.Displayed() != p.Payload {
		t.Fatal("expected preview to be displayed")
	}
	if s.Pending() == nil {
		t.Fatal("expected pending file")
	}
}

func TestSelectionRejectKeepsPersisted(t *testing.T) {
	s := NewSelection(AvatarPolicy, "https://cdn/old.png")
	ch, err := s.Select(pngFile(3 * 1024 * 1024))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if ch != nil {
		t.Fatal("no preview must be produced for a rejected file")
	}
	if s.Displayed() != "https://cdn/old.png" {
		t.Fatalf("expected persisted avatar, got %q", s.Displayed())
	}
	if s.Pending() != nil {
		t.Fatal("expected no pending file")
	}
	if _, ok := s.Preview(); ok {
		t.Fatal("expected no preview")
	}
}

func TestSelectionRejectClearsEarlierPending(t *testing.T) {
	s := NewSelection(AvatarPolicy, "")
	ch, _ := s.Select(pngFile(1024))
	<-ch
	if _, err := s.Select(&File{Name: "a.txt", ContentType: "text/plain", Data: []byte("hi")}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if s.Pending() != nil || s.Displayed() != "" {
		t.Fatal("expected pending selection cleared")
	}
}

func TestSelectionClearAndCommit(t *testing.T) {
	s := NewSelection(AvatarPolicy, "old")
	ch, _ := s.Select(pngFile(1024))
	<-ch
	s.Clear()
	if s.Pending() != nil || s.Displayed() != "old" {
		t.Fatal("expected cleared selection")
	}
	ch, _ = s.Select(pngFile(1024))
	<-ch
	s.Commit("new")
	if s.Pending() != nil || s.Displayed() != "new" {
		t.Fatalf("expected committed value, got %q", s.Displayed())
	}
}

func TestFromHeader(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(pngFile(2048).Data)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	fh := req.MultipartForm.File["avatar"][0]

	f, err := FromHeader(fh, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Size() != 1025 {
		t.Fatalf("expected read capped at limit+1, got %d", f.Size())
	}
	if !errors.Is(AvatarPolicy.WithMaxBytes(1024).Check(f), ErrTooLarge) {
		t.Fatal("expected capped file to be rejected")
	}
	if f.MimeType() != "image/png" {
		t.Fatalf("expected sniffed png, got %q", f.MimeType())
	}
}

func TestFromForm(t *testing.T) {
	form := &multipart.Form{Value: map[string][]string{"subject": {"Hello", "ignored"}}}
	if v, ok := FormValue(form, "subject"); !ok || v != "Hello" {
		t.Fatalf("expected first value, got %q %v", v, ok)
	}
	if _, ok := FormValue(form, "message"); ok {
		t.Fatal("expected missing value")
	}
	f, err := FromForm(form, "attachment", 1024)
	if err != nil || f != nil {
		t.Fatalf("expected no file, got %v %v", f, err)
	}
	if _, ok := FormValue(nil, "subject"); ok {
		t.Fatal("expected nil form to carry nothing")
	}
}
