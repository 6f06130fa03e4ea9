// Package cloudinary uploads images to a hosted media service using unsigned
// upload presets, trying a fixed list of destinations in order.
package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/photostore"
	"github.com/vbonduro/lostfound/internal/resolver"
)

const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// Destination is one named upload target: a cloud namespace and an unsigned
// upload preset configured in it.
type Destination struct {
	Namespace string `yaml:"namespace"`
	Preset    string `yaml:"preset"`
}

func (d Destination) String() string {
	return d.Namespace + "/" + d.Preset
}

// DefaultDestinations are the public demo presets.
var DefaultDestinations = []Destination{
	{Namespace: "demo", Preset: "docs_upload_example_us_preset"},
	{Namespace: "demo", Preset: "upload_example"},
	{Namespace: "demo", Preset: "sample_upload"},
	{Namespace: "dlh7rkwgx", Preset: "sample"},
}

// ParseDestinations parses a comma-separated "namespace/preset" list.
func ParseDestinations(s string) ([]Destination, error) {
	var out []Destination
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ns, preset, ok := strings.Cut(part, "/")
		if !ok || ns == "" || preset == "" {
			return nil, fmt.Errorf("invalid upload destination %q: want namespace/preset", part)
		}
		out = append(out, Destination{Namespace: ns, Preset: preset})
	}
	return out, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

type Uploader struct {
	baseURL      string
	destinations []Destination
	client       *http.Client
	logger       *slog.Logger
}

func NewUploader(baseURL string, destinations []Destination, logger *slog.Logger) *Uploader {
	return &Uploader{
		baseURL:      strings.TrimRight(baseURL, "/"),
		destinations: destinations,
		client:       &http.Client{},
		logger:       logger,
	}
}

var _ resolver.Resolver = (*Uploader)(nil)

func (u *Uploader) Policy() imaging.Policy {
	return imaging.RemotePolicy
}

func (u *Uploader) Validate(f *imaging.File) domain.Validation {
	return imaging.Validate(f, u.Policy())
}

func (u *Uploader) Preview(f *imaging.File) (string, error) {
	return resolver.Preview(f)
}

// Resolve uploads f to each destination in order, once each, and returns the
// first hosted URL. Attempts never overlap. If every destination fails, the
// returned error carries the last failure.
func (u *Uploader) Resolve(ctx context.Context, f *imaging.File) (string, error) {
	if err := u.Validate(f).Err(); err != nil {
		return "", err
	}
	if len(u.destinations) == 0 {
		return "", errors.New("no upload destinations configured")
	}

	var lastErr error
	for i, d := range u.destinations {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		u.logger.Debug("attempting upload", "attempt", i+1, "of", len(u.destinations), "destination", d.String())

		url, err := u.upload(ctx, d, f)
		if err == nil {
			u.logger.Info("upload succeeded", "attempt", i+1, "destination", d.String())
			return url, nil
		}
		u.logger.Warn("upload destination failed", "attempt", i+1, "of", len(u.destinations), "destination", d.String(), "error", err)
		lastErr = err
	}
	return "", fmt.Errorf("all upload destinations failed: last error: %w", lastErr)
}

func (u *Uploader) upload(ctx context.Context, d Destination, f *imaging.File) (string, error) {
	body, contentType, err := buildForm(d, f)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.baseURL, d.Namespace)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", domain.NewTransportError("upload image", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			u.logger.Error("failed to close upload response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", &domain.TransportError{
			Op:     "upload image",
			Status: resp.StatusCode,
			Err:    errors.New(strings.TrimSpace(string(errBody))),
		}
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", errors.New("upload response has no secure_url")
	}
	return out.SecureURL, nil
}

func buildForm(d Destination, f *imaging.File) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	name := f.Name
	if name == "" {
		name = "upload" + photostore.MIMEToExt(f.MIMEType)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", f.MIMEType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.WriteField("upload_preset", d.Preset); err != nil {
		return nil, "", fmt.Errorf("failed to write preset: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return body, w.FormDataContentType(), nil
}
