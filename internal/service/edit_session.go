package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/resolver"
)

type State int

const (
	Viewing State = iota
	Editing
	Saving
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrInvalidTransition = errors.New("invalid edit transition")

const (
	SavingLabel = "Saving..."
	MsgUpdated  = "Item updated successfully!"
	msgSaveFail = "Failed to save changes: "
)

// EditForm is the prefilled form for an item. Photo is empty when the item
// has none and the placeholder should be shown.
type EditForm struct {
	ID            string
	Name          string
	Description   string
	Location      string
	Date          string
	Status        domain.Status
	Photo         string
	LocationLabel string
	DateLabel     string
}

func (f EditForm) Placeholder() bool {
	return f.Photo == ""
}

// EditValues are the raw form values collected on submit.
type EditValues struct {
	Name        string
	Description string
	Location    string
	Date        string
}

// EditSession drives a single edit of one item. It is safe for concurrent
// use; an operation attempted from the wrong state returns
// ErrInvalidTransition.
type EditSession struct {
	items     itemRepository
	images    resolver.Resolver
	presenter Presenter
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	item    domain.Item
	state   State
	photo   *imaging.File
	preview string
}

func (s *EditSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Item returns the item as last persisted by this session.
func (s *EditSession) Item() domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

func (s *EditSession) transitionErr(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, s.state)
}

// Edit moves Viewing to Editing and returns the form to show.
func (s *EditSession) Edit() (EditForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Viewing {
		return EditForm{}, s.transitionErr("edit")
	}
	s.state = Editing
	return s.form(), nil
}

// Form returns the form as it currently stands, including a staged photo's
// preview.
func (s *EditSession) Form() EditForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form()
}

func (s *EditSession) form() EditForm {
	photo := s.item.PhotoURL
	if s.preview != "" {
		photo = s.preview
	}
	return EditForm{
		ID:            s.item.ID,
		Name:          s.item.Name,
		Description:   s.item.Description,
		Location:      s.item.Location,
		Date:          s.item.Date,
		Status:        s.item.Status,
		Photo:         photo,
		LocationLabel: s.item.LocationLabel(),
		DateLabel:     s.item.DateLabel(),
	}
}

// SelectPhoto stages f as the replacement photo and returns its preview. An
// invalid file is reported through the presenter and the previously staged
// photo, if any, is kept.
func (s *EditSession) SelectPhoto(f *imaging.File) (string, error) {
	s.mu.Lock()
	if s.state != Editing && s.state != Failed {
		err := s.transitionErr("select photo")
		s.mu.Unlock()
		return "", err
	}
	s.mu.Unlock()

	if err := s.images.Validate(f).Err(); err != nil {
		s.presenter.ShowError(validationMessage(err))
		return "", err
	}
	preview, err := s.images.Preview(f)
	if err != nil {
		s.presenter.ShowError(err.Error())
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing && s.state != Failed {
		return "", s.transitionErr("select photo")
	}
	s.photo = f
	s.preview = preview
	return preview, nil
}

// Submit saves the edited values. A staged photo is resolved first; if that
// fails the item is saved without touching its photo. On a store failure the
// session moves to Failed and Submit may be called again.
func (s *EditSession) Submit(ctx context.Context, v EditValues) (*domain.Item, error) {
	s.mu.Lock()
	if s.state != Editing && s.state != Failed {
		err := s.transitionErr("submit")
		s.mu.Unlock()
		return nil, err
	}

	name := strings.TrimSpace(v.Name)
	desc := strings.TrimSpace(v.Description)
	loc := strings.TrimSpace(v.Location)
	date := v.Date
	now := s.now()
	u := domain.ItemUpdate{
		Name:        &name,
		Description: &desc,
		Location:    &loc,
		Date:        &date,
		UpdatedAt:   &now,
	}
	if err := domain.ValidateUpdate(u).Err(); err != nil {
		s.mu.Unlock()
		s.presenter.ShowError(validationMessage(err))
		return nil, err
	}

	s.state = Saving
	id := s.item.ID
	oldPhoto := s.item.PhotoURL
	photo := s.photo
	s.mu.Unlock()

	s.presenter.SetBusy(true, SavingLabel)
	defer s.presenter.SetBusy(false, "")

	if photo != nil {
		url, err := s.images.Resolve(ctx, photo)
		if err != nil {
			s.logger.Warn("photo upload failed, saving without new photo", "item_id", id, "error", err)
		} else {
			u.PhotoURL = &url
		}
	}

	updated, err := s.items.Update(ctx, id, u)

	s.mu.Lock()
	if err != nil {
		s.state = Failed
		s.mu.Unlock()
		s.logger.Error("failed to save item", "item_id", id, "error", err)
		s.presenter.ShowError(msgSaveFail + err.Error())
		return nil, err
	}
	s.state = Done
	s.item = *updated
	s.photo = nil
	s.preview = ""
	s.mu.Unlock()

	s.logger.Info("item updated", "item_id", id)
	if u.PhotoURL != nil && *u.PhotoURL != oldPhoto {
		releasePhoto(ctx, s.items, s.images, s.logger, oldPhoto)
	}
	s.presenter.ShowSuccess(MsgUpdated)
	return updated, nil
}

// Cancel abandons the edit and discards any staged photo.
func (s *EditSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing && s.state != Failed {
		return s.transitionErr("cancel")
	}
	s.state = Viewing
	s.photo = nil
	s.preview = ""
	return nil
}

func validationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return strings.Join(ve.Errors, "\n")
	}
	return err.Error()
}
