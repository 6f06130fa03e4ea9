package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/photostore"
)

const (
	// maxPhotoRead is one byte over the largest photo any strategy accepts,
	// so oversized files still reach validation and get its message.
	maxPhotoRead = imaging.RemoteMaxBytes + 1
	// maxFormBytes bounds a whole multipart request.
	maxFormBytes = imaging.RemoteMaxBytes + 1<<20
	// maxFormMemory is how much of a multipart form is kept in memory.
	maxFormMemory = 32 << 20
)

var errFormTooLarge = errors.New("request too large")

// parseForm parses a multipart or urlencoded body within maxFormBytes.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return errFormTooLarge
	}
	return err
}

// readPhoto returns the image posted in field, or nil when none was chosen.
// The type comes from the file's magic bytes, not the client's header.
func readPhoto(r *http.Request, field string, logger *slog.Logger) (*imaging.File, error) {
	file, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	defer closeWithLog(file, "upload file", logger)

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoRead))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &imaging.File{Name: fileName(hdr), MIMEType: imaging.DetectMIME(data), Data: data}, nil
}

func fileName(hdr *multipart.FileHeader) string {
	if hdr == nil {
		return ""
	}
	return hdr.Filename
}

type previewResponse struct {
	Preview string   `json:"preview,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Server) handlePreviewPhoto(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.writeJSON(w, formStatus(err), previewResponse{Errors: []string{s.formError(err)}})
		return
	}
	f, err := readPhoto(r, "photo", s.logger)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, previewResponse{Errors: []string{err.Error()}})
		return
	}

	preview, err := s.service.PreviewPhoto(f)
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		s.writeJSON(w, http.StatusUnprocessableEntity, previewResponse{Errors: ve.Errors})
	case err != nil:
		s.logger.Error("preview photo failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, previewResponse{Errors: []string{"failed to preview photo"}})
	default:
		s.writeJSON(w, http.StatusOK, previewResponse{Preview: preview})
	}
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if s.photoStore == nil || !photostore.ValidKey(key) {
		http.NotFound(w, r)
		return
	}

	reader, mimeType, err := s.photoStore.Get(r.Context(), key)
	if errors.Is(err, photostore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to get photo", http.StatusInternalServerError)
		s.logger.Error("get photo failed", "key", key, "error", err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "key", key, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
