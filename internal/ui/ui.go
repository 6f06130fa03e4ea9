// Package ui holds the small presentation helpers shared by the web pages:
// date formatting, text truncation, transient messages and page routing.
package ui

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	inputLayout   = "2006-01-02"
	displayLayout = "Jan 2, 2006"

	DefaultTruncate  = 100
	DefaultBusyLabel = "Loading..."
	DefaultNoItems   = "No items found"
)

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(inputLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// FormatDate renders a stored date as e.g. "Mar 8, 2024". Values that do not
// parse are returned as given.
func FormatDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format(displayLayout)
}

// FormatTime renders a timestamp in the same style as FormatDate.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(displayLayout)
}

// FormatDateForInput returns s as YYYY-MM-DD for a date input, or "" when s
// is empty or unparseable.
func FormatDateForInput(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format(inputLayout)
}

// Today returns now's UTC calendar date as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.UTC().Format(inputLayout)
}

// Truncate shortens text to max characters followed by "...". A max of zero
// or less uses DefaultTruncate.
func Truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultTruncate
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)
	return string(r[:max]) + "..."
}

// NoItemsMessage returns msg, or the default empty-list text.
func NoItemsMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return DefaultNoItems
	}
	return msg
}
