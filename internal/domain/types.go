package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusLost  Status = "Lost"
	StatusFound Status = "Found"
)

// Valid reports whether s is one of the two statuses an item can be created with.
func (s Status) Valid() bool {
	return s == StatusLost || s == StatusFound
}

// Filter restricts a listing by status. FilterAll applies no restriction.
type Filter string

const (
	FilterAll   Filter = "All"
	FilterLost  Filter = Filter(StatusLost)
	FilterFound Filter = Filter(StatusFound)
)

// ParseFilter accepts "", "All", "Lost" and "Found". The empty string is All.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterLost):
		return FilterLost, nil
	case string(FilterFound):
		return FilterFound, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// Item is a lost or found report. ID and CreatedAt are assigned by the
// collection on insert and never change.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Date        string     `json:"date"`
	Status      Status     `json:"status"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (i *Item) HasPhoto() bool {
	return i.PhotoURL != ""
}

// LocationLabel returns the form label for the location field, e.g. "Location Lost".
func (i *Item) LocationLabel() string {
	return "Location " + string(i.Status)
}

// DateLabel returns the form label for the date field, e.g. "Date Found".
func (i *Item) DateLabel() string {
	return "Date " + string(i.Status)
}

// NewItem is the field set submitted on create.
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Status      Status `json:"status"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// ItemUpdate carries the fields to change. Nil fields are left untouched.
// Status is absent: an item keeps the status it was created with.
type ItemUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Date        *string    `json:"date,omitempty"`
	PhotoURL    *string    `json:"photo_url,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Apply returns a copy of item with u's non-nil fields written over it.
func (u ItemUpdate) Apply(item Item) Item {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Location != nil {
		item.Location = *u.Location
	}
	if u.Date != nil {
		item.Date = *u.Date
	}
	if u.PhotoURL != nil {
		item.PhotoURL = *u.PhotoURL
	}
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		item.UpdatedAt = &t
	}
	return item
}
