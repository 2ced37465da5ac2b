package upload

import (
	"encoding/base64"
	"strings"
)

// Preview is what the client displays for a selected file before upload.
type Preview struct {
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Size      string `json:"size"`
	// Payload is a data URL for images and empty for other types.
	Payload string `json:"payload,omitempty"`
}

// BuildPreview decodes f into its inline preview.
func BuildPreview(f *File) Preview {
	mt := f.MimeType()
	p := Preview{
		Name:      f.Name,
		MimeType:  mt,
		SizeBytes: f.Size(),
		Size:      FormatBytes(f.Size(), 2),
	}
	if strings.HasPrefix(mt, "image/") {
		p.Payload = "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
	}
	return p
}
