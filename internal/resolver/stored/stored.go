// Package stored saves images to a photostore and references them by URL
// path served from this application.
package stored

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/photostore"
	"github.com/vbonduro/lostfound/internal/resolver"
)

const PathPrefix = "/photos/"

type Resolver struct {
	photos photostore.PhotoStore
}

func New(photos photostore.PhotoStore) *Resolver {
	return &Resolver{photos: photos}
}

var _ resolver.Resolver = (*Resolver)(nil)

func (r *Resolver) Policy() imaging.Policy {
	return imaging.RemotePolicy
}

func (r *Resolver) Validate(f *imaging.File) domain.Validation {
	return imaging.Validate(f, r.Policy())
}

func (r *Resolver) Preview(f *imaging.File) (string, error) {
	return resolver.Preview(f)
}

func (r *Resolver) Resolve(ctx context.Context, f *imaging.File) (string, error) {
	if err := r.Validate(f).Err(); err != nil {
		return "", err
	}
	key, err := r.photos.Save(ctx, f.MIMEType, f.Data)
	if err != nil {
		return "", domain.NewTransportError("store photo", fmt.Errorf("save: %w", err))
	}
	return PathPrefix + key, nil
}

// Release deletes the stored photo that ref points at. References this
// resolver did not produce, and photos already gone, are ignored.
func (r *Resolver) Release(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, PathPrefix)
	if !ok || !photostore.ValidKey(key) {
		return nil
	}
	err := r.photos.Delete(ctx, key)
	if errors.Is(err, photostore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete photo %s: %w", key, err)
	}
	return nil
}
