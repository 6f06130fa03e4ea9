package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/ui"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("Item name is required"), http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("failed to upload photo: %w", domain.NewValidationError("x")), http.StatusUnprocessableEntity},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"nothing deleted", domain.ErrNothingDeleted, http.StatusConflict},
		{"consistency", domain.ErrConsistency, http.StatusInternalServerError},
		{"transport", domain.NewTransportError("list items", errors.New("timeout")), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestImageSrc(t *testing.T) {
	assert.Equal(t, template.URL("data:image/png;base64,AAAA"), imageSrc("data:image/png;base64,AAAA"))
	assert.Equal(t, template.URL("https://res.example.com/a.jpg"), imageSrc("https://res.example.com/a.jpg"))
	assert.Equal(t, template.URL("/photos/abc.png"), imageSrc("/photos/abc.png"))
	assert.Equal(t, template.URL(""), imageSrc("javascript:alert(1)"))
	assert.Equal(t, template.URL(""), imageSrc("data:text/html,<b>x</b>"))
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	redirectWithFlash(rec, req, "/dashboard", ui.SuccessMessage("Item deleted successfully!"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	next.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	m := takeFlash(rec2, next)
	require.NotNil(t, m)
	assert.Equal(t, ui.KindSuccess, m.Kind)
	assert.Equal(t, "Item deleted successfully!", m.Text)

	cleared := rec2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestTakeFlash_IgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "!!not base64!!"})
	assert.Nil(t, takeFlash(httptest.NewRecorder(), req))

	assert.Nil(t, takeFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per IP")

	now = now.Add(time.Second)
	assert.True(t, rl.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	rl.allow("10.0.0.3")
	rl.mu.Lock()
	_, stale := rl.visitors["10.0.0.1"]
	rl.mu.Unlock()
	assert.False(t, stale, "stale visitors are swept")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := newRateLimiter(0.001, 1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(method string) int {
		req := httptest.NewRequest(method, "/items", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, serve(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, serve(http.MethodDelete))
	assert.Equal(t, http.StatusNoContent, serve(http.MethodGet))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::1]:8080"
	assert.Equal(t, "2001:db8::1", clientIP(r))
	r.RemoteAddr = "[2001:db8::2]"
	assert.Equal(t, "2001:db8::2", clientIP(r))
}
