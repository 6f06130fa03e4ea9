// Package resolver turns a user-selected image into the string stored in an
// item's photo_url: a hosted URL or an inline data URL.
package resolver

import (
	"context"
	"errors"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
)

type Resolver interface {
	// Policy is the size ceiling this strategy enforces.
	Policy() imaging.Policy
	// Validate checks type and size against the ceiling of this strategy.
	Validate(f *imaging.File) domain.Validation
	// Preview returns a reference the browser can render immediately.
	Preview(f *imaging.File) (string, error)
	// Resolve validates f and returns the value to persist as photo_url.
	Resolve(ctx context.Context, f *imaging.File) (string, error)
}

// Releaser is implemented by resolvers that keep the image themselves and
// can drop it once no item refers to it.
type Releaser interface {
	Release(ctx context.Context, ref string) error
}

var ErrNoFile = errors.New("no file provided")

// Preview renders f as a data URL. Every strategy previews this way,
// regardless of where the image is eventually stored.
func Preview(f *imaging.File) (string, error) {
	if f == nil || f.Size() == 0 {
		return "", ErrNoFile
	}
	return imaging.DataURL(f.MIMEType, f.Data), nil
}
