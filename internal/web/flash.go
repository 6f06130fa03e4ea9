package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/vbonduro/lostfound/internal/ui"
)

const flashCookie = "flash"

// setFlash stores m for the next page render.
func setFlash(w http.ResponseWriter, m ui.Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending message, if any, and clears it.
func takeFlash(w http.ResponseWriter, r *http.Request) *ui.Message {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var m ui.Message
	if err := json.Unmarshal(data, &m); err != nil || m.Text == "" {
		return nil
	}
	return &m
}

// redirectWithFlash sends the browser to path, showing m once it lands.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path string, m ui.Message) {
	setFlash(w, m)
	http.Redirect(w, r, path, http.StatusSeeOther)
}
