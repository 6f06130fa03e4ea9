// Package imaging validates user-selected images and prepares them for
// storage.
package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
)

// File is an image the user selected, with the MIME type it was declared or
// detected as.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (f *File) Size() int {
	return len(f.Data)
}

// Policy is the size ceiling that applies to one resolution strategy.
type Policy struct {
	MaxBytes int
	// Label is the human-readable ceiling used in error messages, e.g. "10MB".
	Label string
}

const (
	RemoteMaxBytes = 10 * 1024 * 1024
	InlineMaxBytes = 2 * 1024 * 1024
)

var (
	// RemotePolicy applies when the image is uploaded to a hosted store.
	RemotePolicy = Policy{MaxBytes: RemoteMaxBytes, Label: "10MB"}
	// InlinePolicy applies when the image is embedded in the record.
	InlinePolicy = Policy{MaxBytes: InlineMaxBytes, Label: "2MB"}
)

// AllowedMIME lists the accepted image types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

const (
	MsgNoFile   = "No file selected"
	MsgBadType  = "Please select a JPEG, PNG, GIF, or WebP image."
	msgTooLarge = "File size must be less than %s"
)

// TooLarge is the size message for a file over p's ceiling.
func (p Policy) TooLarge() string {
	return fmt.Sprintf(msgTooLarge, p.Label)
}

// Validate checks f against the accepted types and p's size ceiling,
// reporting every violation.
func Validate(f *File, p Policy) domain.Validation {
	if f == nil || f.Size() == 0 {
		return domain.Validation{Valid: false, Errors: []string{MsgNoFile}}
	}

	var errs []string
	if !AllowedMIME[f.MIMEType] {
		errs = append(errs, MsgBadType)
	}
	if f.Size() > p.MaxBytes {
		errs = append(errs, p.TooLarge())
	}
	return domain.Validation{Valid: len(errs) == 0, Errors: errs}
}

// DetectMIME sniffs the image type from magic bytes. Unknown content yields
// whatever http.DetectContentType reports, which Validate then rejects.
func DetectMIME(data []byte) string {
	if isWebP(data) {
		return "image/webp"
	}
	return http.DetectContentType(data)
}

// isWebP reports whether data is a RIFF container with "WEBP" at offset 8.
// http.DetectContentType also requires a "VP" chunk tag at offset 12, so a
// truncated header would otherwise sniff as application/octet-stream.
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// DataURL encodes data as a self-contained data: URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
