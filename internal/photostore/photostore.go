// Package photostore persists uploaded photos under content-derived keys.
package photostore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("photo not found")

type PhotoStore interface {
	// Save stores data and returns its storage key. Saving identical bytes
	// twice returns the same key.
	Save(ctx context.Context, mimeType string, data []byte) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// Key derives the storage key for data: the hex SHA-256 digest plus an
// extension for mimeType.
func Key(mimeType string, data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + MIMEToExt(mimeType)
}

func MIMEToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func ExtToMIME(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// ValidKey reports whether key has the shape Key produces.
func ValidKey(key string) bool {
	ext := filepath.Ext(key)
	digest := strings.TrimSuffix(key, ext)
	if len(digest) != sha256.Size*2 {
		return false
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return false
	}
	return ext == ".jpg" || ext == ".png" || ext == ".gif" || ext == ".webp"
}
