package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/service"
	"github.com/vbonduro/lostfound/internal/ui"
)

const (
	msgDeleted      = "Item deleted successfully!"
	msgDeleteFailed = "Failed to delete item: "
	msgReportFailed = "Failed to submit report: "
)

func newItemFromForm(r *http.Request) domain.NewItem {
	return domain.NewItem{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Date:        r.FormValue("date"),
		Status:      domain.Status(r.FormValue("status")),
	}
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		form := s.newReportForm(domain.StatusLost)
		form.Errors = []string{s.formError(err)}
		s.renderReportForm(w, r, formStatus(err), form)
		return
	}

	in := newItemFromForm(r)
	form := s.newReportForm(in.Status)
	form.Values = in

	photo, err := readPhoto(r, "photo", s.logger)
	if err != nil {
		form.Errors = []string{err.Error()}
		s.renderReportForm(w, r, http.StatusBadRequest, form)
		return
	}

	item, err := s.service.Create(r.Context(), in, photo)
	if err != nil {
		if domain.IsValidation(err) {
			form.Errors = validationErrors(err)
		} else {
			s.logger.Error("create item failed", "error", err)
			form.Errors = []string{msgReportFailed + err.Error()}
		}
		s.renderReportForm(w, r, statusFor(err), form)
		return
	}

	redirectWithFlash(w, r, "/dashboard?status="+string(item.Status),
		ui.SuccessMessage(string(item.Status)+" item reported successfully!"))
}

// formError describes a body that could not be parsed. An oversized body is
// reported with the ceiling of the configured image strategy.
func (s *Server) formError(err error) string {
	if errors.Is(err, errFormTooLarge) {
		return s.service.PhotoPolicy().TooLarge()
	}
	return "Failed to read form: " + err.Error()
}

func formStatus(err error) int {
	if errors.Is(err, errFormTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (s *Server) renderEditForm(w http.ResponseWriter, r *http.Request, code int, form service.EditForm, msg *ui.Message) {
	data := s.pageData(w, r, "Edit "+form.Name, ui.PageDashboard, map[string]any{
		"Form":      form,
		"BusyLabel": service.SavingLabel,
	})
	if msg != nil {
		data["Flash"] = msg
	}
	if err := s.renderPageStatus(w, code, data, "base.html", "pages/edit.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	form, err := s.service.BeginEdit(item, &pagePresenter{logger: s.logger}).Edit()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderEditForm(w, r, http.StatusOK, form, nil)
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	p := &pagePresenter{logger: s.logger}
	sess := s.service.BeginEdit(item, p)
	form, err := sess.Edit()
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := parseForm(w, r); err != nil {
		msg := ui.ErrorMessage(s.formError(err))
		s.renderEditForm(w, r, formStatus(err), form, &msg)
		return
	}
	vals := service.EditValues{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
	}
	withValues := func(f service.EditForm) service.EditForm {
		f.Name, f.Description, f.Location, f.Date = vals.Name, vals.Description, vals.Location, vals.Date
		return f
	}

	photo, err := readPhoto(r, "photo", s.logger)
	if err != nil {
		msg := ui.ErrorMessage(err.Error())
		s.renderEditForm(w, r, http.StatusBadRequest, withValues(form), &msg)
		return
	}
	if photo != nil {
		if _, err := sess.SelectPhoto(photo); err != nil {
			s.renderEditForm(w, r, statusFor(err), withValues(sess.Form()), p.last())
			return
		}
	}

	if _, err := sess.Submit(r.Context(), vals); err != nil {
		s.renderEditForm(w, r, statusFor(err), withValues(sess.Form()), p.last())
		return
	}
	redirectWithFlash(w, r, "/dashboard", ui.SuccessMessage(service.MsgUpdated))
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.renderPage(w,
		s.pageData(w, r, "Delete "+item.Name, ui.PageDashboard, map[string]any{"Item": item}),
		"base.html", "pages/delete.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func deleteMessage(err error) string {
	if errors.Is(err, domain.ErrConsistency) {
		return err.Error()
	}
	return msgDeleteFailed + err.Error()
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.service.Delete(r.Context(), id); err != nil {
		s.logger.Error("delete item failed", "item_id", id, "error", err)
		redirectWithFlash(w, r, "/dashboard", ui.ErrorMessage(deleteMessage(err)))
		return
	}
	redirectWithFlash(w, r, "/dashboard", ui.SuccessMessage(msgDeleted))
}

func (s *Server) handleDeleteItemHX(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.service.Delete(r.Context(), id); err != nil {
		s.logger.Error("delete item failed", "item_id", id, "error", err)
		http.Error(w, deleteMessage(err), statusFor(err))
		return
	}
	setFlash(w, ui.SuccessMessage(msgDeleted))
	w.Header().Set("HX-Redirect", "/dashboard")
	w.WriteHeader(http.StatusOK)
}
