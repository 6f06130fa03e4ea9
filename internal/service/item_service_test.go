package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/collection/sqltable"
	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/resolver/inline"
	"github.com/vbonduro/lostfound/internal/store"
)

func report() domain.NewItem {
	return domain.NewItem{
		Name:        "Blue umbrella",
		Description: "Folding, wooden handle",
		Location:    "Bus 42",
		Date:        "2024-03-08",
		Status:      domain.StatusLost,
	}
}

func pngFile() *imaging.File {
	return &imaging.File{Name: "u.png", MIMEType: "image/png", Data: []byte("\x89PNG\r\n")}
}

func TestCreate_WithPhoto(t *testing.T) {
	items := newFakeItems()
	images := &fakeImages{url: "https://img.example.com/u.png"}
	svc := NewItemService(items, images, testLogger())

	item, err := svc.Create(context.Background(), report(), pngFile())
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/u.png", item.PhotoURL)
	require.Len(t, items.created, 1)
	assert.Equal(t, "https://img.example.com/u.png", items.created[0].PhotoURL)
}

func TestCreate_PhotoFailureIsFatal(t *testing.T) {
	items := newFakeItems()
	images := &fakeImages{err: errors.New("all upload destinations failed")}
	svc := NewItemService(items, images, testLogger())

	_, err := svc.Create(context.Background(), report(), pngFile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload photo")
	assert.Empty(t, items.created)
}

func TestCreate_InvalidFieldsSkipUpload(t *testing.T) {
	items := newFakeItems()
	images := &fakeImages{url: "x"}
	svc := NewItemService(items, images, testLogger())

	in := report()
	in.Name = " "
	in.Date = ""
	_, err := svc.Create(context.Background(), in, pngFile())

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Item name is required", "Date is required"}, ve.Errors)
	assert.Zero(t, images.resolved)
	assert.Empty(t, items.created)
}

func TestPreviewPhoto(t *testing.T) {
	svc := NewItemService(newFakeItems(), &fakeImages{}, testLogger())

	got, err := svc.PreviewPhoto(pngFile())
	require.NoError(t, err)
	assert.Equal(t, "preview:u.png", got)

	_, err = svc.PreviewPhoto(&imaging.File{MIMEType: "application/pdf", Data: []byte("%PDF")})
	assert.True(t, domain.IsValidation(err))
}

func TestItemService_SQLiteRoundTrip(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	defer d.Close()

	items := store.NewItemStore(sqltable.NewSQLite(d, testLogger()), testLogger())
	svc := NewItemService(items, inline.NewEncoder(inline.Options{}, testLogger()), testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, report(), pngFile())
	require.NoError(t, err)
	assert.Equal(t, imaging.DataURL("image/png", pngFile().Data), created.PhotoURL)

	lost, err := svc.List(ctx, domain.FilterLost)
	require.NoError(t, err)
	require.Len(t, lost, 1)
	found, err := svc.List(ctx, domain.FilterFound)
	require.NoError(t, err)
	assert.Empty(t, found)

	ok, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func storedItem(id, photo string) *domain.Item {
	return &domain.Item{ID: id, Name: "Scarf", Description: "Wool", Location: "Gym",
		Date: "2024-03-01", Status: domain.StatusFound, PhotoURL: photo, CreatedAt: fixedNow}
}

func TestDelete_ReleasesUnreferencedPhoto(t *testing.T) {
	items := newFakeItems(storedItem("a", "/photos/a.png"), storedItem("b", "/photos/b.png"))
	images := &releasingImages{fakeImages: &fakeImages{}}
	svc := NewItemService(items, images, testLogger())

	ok, err := svc.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"/photos/a.png"}, images.released)
}

func TestDelete_KeepsSharedPhoto(t *testing.T) {
	items := newFakeItems(storedItem("a", "/photos/same.png"), storedItem("b", "/photos/same.png"))
	images := &releasingImages{fakeImages: &fakeImages{}}
	svc := NewItemService(items, images, testLogger())

	_, err := svc.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, images.released)
}

func TestDelete_ReleaseFailureDoesNotFailDelete(t *testing.T) {
	items := newFakeItems(storedItem("a", "/photos/a.png"))
	images := &releasingImages{fakeImages: &fakeImages{}, releaseErr: errors.New("bucket unavailable")}
	svc := NewItemService(items, images, testLogger())

	ok, err := svc.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"/photos/a.png"}, images.released)
}

func TestDelete_NoPhotoNothingReleased(t *testing.T) {
	items := newFakeItems(storedItem("a", ""))
	images := &releasingImages{fakeImages: &fakeImages{}}
	svc := NewItemService(items, images, testLogger())

	_, err := svc.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, images.released)

	_, err = svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, images.released)
}
