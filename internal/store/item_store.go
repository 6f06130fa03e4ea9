package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vbonduro/lostfound/internal/collection"
	"github.com/vbonduro/lostfound/internal/domain"
)

// ItemStore is the client-side view of the remote item collection.
type ItemStore struct {
	coll   collection.Collection
	logger *slog.Logger
}

func NewItemStore(coll collection.Collection, logger *slog.Logger) *ItemStore {
	return &ItemStore{coll: coll, logger: logger}
}

// List returns items newest first. FilterAll and the empty filter return
// every item.
func (s *ItemStore) List(ctx context.Context, filter domain.Filter) ([]*domain.Item, error) {
	s.logger.Debug("fetching items", "filter", filter)

	q := collection.Query{OrderBy: collection.ColumnCreatedAt}
	if filter != "" && filter != domain.FilterAll {
		q = q.Eq(collection.ColumnStatus, string(filter))
	}

	items, err := s.coll.Select(ctx, q)
	if err != nil {
		s.logger.Error("failed to fetch items", "filter", filter, "error", err)
		return nil, transportError("fetch items", err)
	}
	s.logger.Debug("fetched items", "filter", filter, "count", len(items))
	return items, nil
}

// Get returns domain.ErrNotFound when no item has id.
func (s *ItemStore) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.coll.SelectOne(ctx, id)
	if errors.Is(err, collection.ErrRowNotFound) {
		s.logger.Debug("item not found", "item_id", id)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, transportError("fetch item", err)
	}
	return item, nil
}

func (s *ItemStore) Create(ctx context.Context, in domain.NewItem) (*domain.Item, error) {
	if err := domain.Validate(in).Err(); err != nil {
		return nil, err
	}

	item, err := s.coll.Insert(ctx, in)
	if err != nil {
		s.logger.Error("failed to create item", "error", err)
		return nil, transportError("create item", err)
	}
	s.logger.Info("item created", "item_id", item.ID, "status", item.Status)
	return item, nil
}

// Update writes the supplied fields of u to the item with id.
func (s *ItemStore) Update(ctx context.Context, id string, u domain.ItemUpdate) (*domain.Item, error) {
	if err := domain.ValidateUpdate(u).Err(); err != nil {
		return nil, err
	}

	item, err := s.coll.Update(ctx, id, u)
	if errors.Is(err, collection.ErrRowNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to update item", "item_id", id, "error", err)
		return nil, transportError("update item", err)
	}
	s.logger.Info("item updated", "item_id", id)
	return item, nil
}

// Delete removes the item and then reads it back to confirm it is gone. The
// three steps run strictly in order. It returns true only once the re-read
// reports the row as not found.
func (s *ItemStore) Delete(ctx context.Context, id string) (bool, error) {
	s.logger.Info("deleting item", "item_id", id)

	existing, err := s.coll.SelectOne(ctx, id)
	if errors.Is(err, collection.ErrRowNotFound) {
		s.logger.Warn("item not found before deletion", "item_id", id)
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, transportError("fetch item before deletion", err)
	}

	deleted, err := s.coll.Delete(ctx, id)
	if err != nil {
		s.logger.Error("database deletion failed", "item_id", id, "error", err)
		return false, transportError("delete item", err)
	}
	if len(deleted) == 0 {
		s.logger.Warn("no rows were deleted", "item_id", id)
		return false, domain.ErrNothingDeleted
	}

	_, err = s.coll.SelectOne(ctx, id)
	switch {
	case err == nil:
		s.logger.Error("item still exists after deletion", "item_id", id, "name", existing.Name)
		return false, domain.ErrConsistency
	case errors.Is(err, collection.ErrRowNotFound):
		s.logger.Info("deletion verified", "item_id", id, "name", existing.Name)
		return true, nil
	default:
		return false, transportError("verify delete", err)
	}
}

// statusCoder is implemented by HTTP-backed collection errors.
type statusCoder interface {
	HTTPStatus() int
}

func transportError(op string, err error) error {
	te := domain.NewTransportError(op, err)
	var sc statusCoder
	if errors.As(err, &sc) {
		te.Status = sc.HTTPStatus()
	}
	return te
}
