// Package inline keeps images inside the item record as data URLs.
package inline

import (
	"context"
	"log/slog"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/resolver"
)

type Options struct {
	Compress bool
	MaxWidth int
	Quality  int
}

type Encoder struct {
	opts   Options
	logger *slog.Logger
}

func NewEncoder(opts Options, logger *slog.Logger) *Encoder {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 800
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 80
	}
	return &Encoder{opts: opts, logger: logger}
}

var _ resolver.Resolver = (*Encoder)(nil)

func (e *Encoder) Policy() imaging.Policy {
	return imaging.InlinePolicy
}

func (e *Encoder) Validate(f *imaging.File) domain.Validation {
	return imaging.Validate(f, e.Policy())
}

func (e *Encoder) Preview(f *imaging.File) (string, error) {
	return resolver.Preview(f)
}

// Resolve returns f as a data URL. With compression enabled the image is
// downscaled first; if that fails the original bytes are used.
func (e *Encoder) Resolve(_ context.Context, f *imaging.File) (string, error) {
	if err := e.Validate(f).Err(); err != nil {
		return "", err
	}
	out := f
	if e.opts.Compress {
		c, err := imaging.Compress(f, e.opts.MaxWidth, e.opts.Quality)
		if err != nil {
			e.logger.Warn("image compression failed, storing original", "error", err)
		} else {
			out = c
		}
	}
	return imaging.DataURL(out.MIMEType, out.Data), nil
}
