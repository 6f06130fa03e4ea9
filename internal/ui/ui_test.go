package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Mar 8, 2024", FormatDate("2024-03-08"))
	assert.Equal(t, "Dec 31, 2023", FormatDate("2023-12-31T23:00:00Z"))
	assert.Equal(t, "yesterday", FormatDate("yesterday"))
	assert.Equal(t, "", FormatDate(""))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "Jan 5, 2024", FormatTime(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatTime(time.Time{}))
}

func TestFormatDateForInput(t *testing.T) {
	assert.Equal(t, "2024-03-08", FormatDateForInput("2024-03-08"))
	assert.Equal(t, "2024-03-08", FormatDateForInput("2024-03-08T05:06:07.123Z"))
	assert.Equal(t, "", FormatDateForInput(""))
	assert.Equal(t, "", FormatDateForInput("not a date"))
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, "2024-03-08", Today(time.Date(2024, 3, 9, 5, 0, 0, 0, loc)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "héé...", Truncate("héééé", 3))

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	got := Truncate(string(long), 0)
	assert.Len(t, got, DefaultTruncate+3)
}

func TestNoItemsMessage(t *testing.T) {
	assert.Equal(t, "No items found", NoItemsMessage(""))
	assert.Equal(t, "No lost items yet", NoItemsMessage("No lost items yet"))
}

func TestMessage(t *testing.T) {
	e := ErrorMessage("boom")
	assert.Equal(t, 5*time.Second, e.AutoHide())
	assert.Equal(t, "error-message", e.Class())

	s := SuccessMessage("ok")
	assert.Equal(t, 3*time.Second, s.AutoHide())
	assert.Equal(t, int64(3000), s.AutoHideMillis())
	assert.Equal(t, "success-message slide-up", s.Class())
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"home", "/"},
		{"lost", "/lost"},
		{"found", "/found"},
		{"dashboard", "/dashboard"},
		{"settings", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePage(tt.name).Path())
		})
	}
}
