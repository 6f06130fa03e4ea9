// Package collection defines the contract of the remote item collection: a
// table-like store that can be filtered, ordered, inserted into, updated and
// deleted from by id.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

// ErrRowNotFound is the distinguishable signal that no row matched an id.
var ErrRowNotFound = errors.New("row not found")

type Collection interface {
	Select(ctx context.Context, q Query) ([]*domain.Item, error)
	// SelectOne returns ErrRowNotFound (possibly wrapped) when no row has id.
	SelectOne(ctx context.Context, id string) (*domain.Item, error)
	Insert(ctx context.Context, item domain.NewItem) (*domain.Item, error)
	// Update returns ErrRowNotFound when no row has id.
	Update(ctx context.Context, id string, u domain.ItemUpdate) (*domain.Item, error)
	// Delete returns the rows it removed. An empty slice means nothing matched
	// or the backend refused silently.
	Delete(ctx context.Context, id string) ([]*domain.Item, error)
}

const (
	ColumnID          = "id"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnLocation    = "location"
	ColumnDate        = "date"
	ColumnStatus      = "status"
	ColumnPhotoURL    = "photo_url"
	ColumnCreatedAt   = "created_at"
	ColumnUpdatedAt   = "updated_at"
)

var columns = map[string]bool{
	ColumnID:          true,
	ColumnName:        true,
	ColumnDescription: true,
	ColumnLocation:    true,
	ColumnDate:        true,
	ColumnStatus:      true,
	ColumnPhotoURL:    true,
	ColumnCreatedAt:   true,
	ColumnUpdatedAt:   true,
}

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  string
}

type Query struct {
	Filters   []Filter
	OrderBy   string
	Ascending bool
}

// Eq returns q with an extra equality filter.
func (q Query) Eq(column, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Value: value})
	return q
}

// Validate rejects column names outside the items schema. Backends call it
// before building a query from q.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !columns[f.Column] {
			return fmt.Errorf("unknown filter column %q", f.Column)
		}
	}
	if q.OrderBy != "" && !columns[q.OrderBy] {
		return fmt.Errorf("unknown order column %q", q.OrderBy)
	}
	return nil
}
