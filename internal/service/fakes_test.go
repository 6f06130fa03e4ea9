package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

// fakeItems is an in-memory itemRepository. When block is set, Update waits
// on it before answering.
type fakeItems struct {
	mu        sync.Mutex
	items     map[string]*domain.Item
	updates   []domain.ItemUpdate
	created   []domain.NewItem
	updateErr error
	block     chan struct{}
	entered   chan struct{}
}

func newFakeItems(items ...*domain.Item) *fakeItems {
	f := &fakeItems{items: make(map[string]*domain.Item)}
	for _, it := range items {
		cp := *it
		f.items[it.ID] = &cp
	}
	return f
}

func (f *fakeItems) List(_ context.Context, filter domain.Filter) ([]*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Item
	for _, it := range f.items {
		if filter == domain.FilterAll || string(it.Status) == string(filter) {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeItems) Get(_ context.Context, id string) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) Create(_ context.Context, in domain.NewItem) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	it := &domain.Item{
		ID: "new-id", Name: in.Name, Description: in.Description, Location: in.Location,
		Date: in.Date, Status: in.Status, PhotoURL: in.PhotoURL, CreatedAt: fixedNow,
	}
	f.items[it.ID] = it
	cp := *it
	return &cp, nil
}

func (f *fakeItems) Update(_ context.Context, id string, u domain.ItemUpdate) (*domain.Item, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	it, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := u.Apply(*it)
	f.items[id] = &next
	cp := next
	return &cp, nil
}

func (f *fakeItems) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return false, domain.ErrNotFound
	}
	delete(f.items, id)
	return true, nil
}

// fakeImages resolves to url unless err is set.
type fakeImages struct {
	url      string
	err      error
	resolved int
}

func (f *fakeImages) Policy() imaging.Policy {
	return imaging.InlinePolicy
}

func (f *fakeImages) Validate(file *imaging.File) domain.Validation {
	return imaging.Validate(file, f.Policy())
}

func (f *fakeImages) Preview(file *imaging.File) (string, error) {
	return "preview:" + file.Name, nil
}

func (f *fakeImages) Resolve(_ context.Context, file *imaging.File) (string, error) {
	f.resolved++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// releasingImages is a fakeImages that keeps its photos and records every
// release.
type releasingImages struct {
	*fakeImages
	mu         sync.Mutex
	released   []string
	releaseErr error
}

func (r *releasingImages) Release(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, ref)
	return r.releaseErr
}

type busyCall struct {
	busy  bool
	label string
}

type recordingPresenter struct {
	mu        sync.Mutex
	errors    []string
	successes []string
	busy      []busyCall
}

func (p *recordingPresenter) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, msg)
}

func (p *recordingPresenter) ShowSuccess(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes = append(p.successes, msg)
}

func (p *recordingPresenter) SetBusy(busy bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = append(p.busy, busyCall{busy, label})
}

var errStore = errors.New("connection reset")
