package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/ui"
)

// pageData builds the template data every page shares.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request, title string, nav ui.Page, extra map[string]any) map[string]any {
	data := map[string]any{
		"Title":     title,
		"ActiveNav": string(nav),
		"Flash":     takeFlash(w, r),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w,
		s.pageData(w, r, "Lost & Found", ui.PageHome, nil),
		"base.html", "pages/home.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, ui.ParsePage(r.PathValue("page")).Path(), http.StatusSeeOther)
}

// reportForm is the state of the lost or found form.
type reportForm struct {
	Status        domain.Status
	Values        domain.NewItem
	Errors        []string
	Today         string
	LocationLabel string
	DateLabel     string
	BusyLabel     string
}

func (s *Server) newReportForm(status domain.Status) reportForm {
	if !status.Valid() {
		status = domain.StatusLost
	}
	sample := domain.Item{Status: status}
	return reportForm{
		Status:        status,
		Values:        domain.NewItem{Status: status},
		Today:         ui.Today(s.now()),
		LocationLabel: sample.LocationLabel(),
		DateLabel:     sample.DateLabel(),
		BusyLabel:     ui.DefaultBusyLabel,
	}
}

func (s *Server) handleReportForm(w http.ResponseWriter, r *http.Request) {
	status := domain.StatusLost
	if strings.TrimPrefix(r.URL.Path, "/") == string(ui.PageFound) {
		status = domain.StatusFound
	}
	s.renderReportForm(w, r, http.StatusOK, s.newReportForm(status))
}

func (s *Server) renderReportForm(w http.ResponseWriter, r *http.Request, code int, form reportForm) {
	nav := ui.PageLost
	if form.Status == domain.StatusFound {
		nav = ui.PageFound
	}
	if err := s.renderPageStatus(w, code,
		s.pageData(w, r, "Report "+string(form.Status)+" Item", nav, map[string]any{"Form": form}),
		"base.html", "pages/report.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := domain.ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	items, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list items failed", "filter", filter, "error", err)
		s.renderError(w, r, err)
		return
	}

	list := map[string]any{
		"Items":  items,
		"Filter": string(filter),
		"Empty":  emptyMessage(filter),
	}
	if r.Header.Get("HX-Request") == "true" {
		if err := s.renderPartial(w, "partials/item_list.html", list); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}

	if err := s.renderPage(w,
		s.pageData(w, r, "Dashboard", ui.PageDashboard, map[string]any{
			"List":    list,
			"Filters": []string{string(domain.FilterAll), string(domain.FilterLost), string(domain.FilterFound)},
		}),
		"base.html", "pages/dashboard.html", "partials/item_list.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func emptyMessage(f domain.Filter) string {
	switch f {
	case domain.FilterLost:
		return "No lost items reported"
	case domain.FilterFound:
		return "No found items reported"
	}
	return ""
}

// statusFor maps an error from the service to an HTTP status.
func statusFor(err error) int {
	var te *domain.TransportError
	switch {
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNothingDeleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConsistency):
		return http.StatusInternalServerError
	case errors.As(err, &te):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// validationErrors returns the individual messages of a validation failure,
// or err's text as a single message.
func validationErrors(err error) []string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return []string{err.Error()}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := "Something went wrong"
	if code == http.StatusNotFound {
		msg = "Item not found"
	}
	data := s.pageData(w, r, msg, ui.PageHome, map[string]any{"Message": msg, "Detail": err.Error()})
	if rerr := s.renderPageStatus(w, code, data, "base.html", "pages/error.html"); rerr != nil {
		s.logger.Error("render page failed", "error", rerr)
	}
}
