package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/resolver"
)

// Presenter is how a workflow reports back to whatever is rendering it.
type Presenter interface {
	ShowError(msg string)
	ShowSuccess(msg string)
	SetBusy(busy bool, label string)
}

// itemRepository is the subset of store.ItemStore that the service requires.
type itemRepository interface {
	List(ctx context.Context, filter domain.Filter) ([]*domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Create(ctx context.Context, in domain.NewItem) (*domain.Item, error)
	Update(ctx context.Context, id string, u domain.ItemUpdate) (*domain.Item, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ItemService struct {
	items  itemRepository
	images resolver.Resolver
	logger *slog.Logger
	now    func() time.Time
}

func NewItemService(items itemRepository, images resolver.Resolver, logger *slog.Logger) *ItemService {
	return &ItemService{
		items:  items,
		images: images,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ItemService) List(ctx context.Context, filter domain.Filter) ([]*domain.Item, error) {
	return s.items.List(ctx, filter)
}

func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

// Create validates the fields, resolves the photo if one was given and
// stores the item. A photo that cannot be resolved fails the whole report.
func (s *ItemService) Create(ctx context.Context, in domain.NewItem, photo *imaging.File) (*domain.Item, error) {
	if err := domain.Validate(in).Err(); err != nil {
		return nil, err
	}

	if photo != nil {
		url, err := s.images.Resolve(ctx, photo)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo: %w", err)
		}
		in.PhotoURL = url
		s.logger.Debug("photo resolved", "bytes", photo.Size())
	}

	item, err := s.items.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("item reported", "item_id", item.ID, "status", item.Status)
	return item, nil
}

// Delete removes the item. Under a strategy that keeps photos itself, the
// item's photo is dropped too once no other item refers to it.
func (s *ItemService) Delete(ctx context.Context, id string) (bool, error) {
	var photo string
	if _, keeps := s.images.(resolver.Releaser); keeps {
		if item, err := s.items.Get(ctx, id); err == nil {
			photo = item.PhotoURL
		}
	}

	ok, err := s.items.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.logger.Info("item deleted", "item_id", id)
	releasePhoto(ctx, s.items, s.images, s.logger, photo)
	return ok, nil
}

// releasePhoto drops the photo behind ref when the resolver keeps photos and
// no remaining item refers to ref. Keys are content addressed, so two items
// may share one. Failures are logged and never fail the caller.
func releasePhoto(ctx context.Context, items itemRepository, images resolver.Resolver, logger *slog.Logger, ref string) {
	rel, ok := images.(resolver.Releaser)
	if !ok || ref == "" {
		return
	}

	all, err := items.List(ctx, domain.FilterAll)
	if err != nil {
		logger.Warn("keeping photo, reference check failed", "photo_url", ref, "error", err)
		return
	}
	for _, it := range all {
		if it.PhotoURL == ref {
			logger.Debug("photo still referenced", "photo_url", ref, "item_id", it.ID)
			return
		}
	}

	if err := rel.Release(ctx, ref); err != nil {
		logger.Error("failed to delete photo", "photo_url", ref, "error", err)
		return
	}
	logger.Info("photo deleted", "photo_url", ref)
}

// PhotoPolicy is the size ceiling of the configured image strategy.
func (s *ItemService) PhotoPolicy() imaging.Policy {
	return s.images.Policy()
}

// PreviewPhoto validates f for the configured strategy and returns a
// displayable reference for it.
func (s *ItemService) PreviewPhoto(f *imaging.File) (string, error) {
	if err := s.images.Validate(f).Err(); err != nil {
		return "", err
	}
	return s.images.Preview(f)
}

// BeginEdit opens an edit session for item in the Viewing state.
func (s *ItemService) BeginEdit(item *domain.Item, p Presenter) *EditSession {
	return &EditSession{
		items:     s.items,
		images:    s.images,
		presenter: p,
		logger:    s.logger,
		now:       s.now,
		item:      *item,
		state:     Viewing,
	}
}
