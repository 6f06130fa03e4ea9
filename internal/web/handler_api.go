package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
)

type apiError struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json failed", "error", err)
	}
}

func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	body := apiError{Error: err.Error()}
	if domain.IsValidation(err) {
		body.Errors = validationErrors(err)
	}
	s.writeJSON(w, statusFor(err), body)
}

func (s *Server) handleAPIListItems(w http.ResponseWriter, r *http.Request) {
	filter, err := domain.ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	items, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list items failed", "filter", filter, "error", err)
		s.writeAPIError(w, err)
		return
	}
	if items == nil {
		items = []*domain.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAPIGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}
