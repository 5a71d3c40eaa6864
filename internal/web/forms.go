package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftapi"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftpage"
	"github.com/sysu-ecnc-dev/shift-board/internal/utils"
)

const shiftLockedMessage = "This shift belongs to a published week and can no longer be changed"

type shiftForm struct {
	Name      string `validate:"required,max=100"`
	Date      string `validate:"required,datetime=2006-01-02"`
	StartTime string `validate:"required,datetime=15:04"`
	EndTime   string `validate:"required,datetime=15:04"`
}

type shiftFormData struct {
	FullName string
	Title    string
	Action   string
	Form     shiftForm
	Error    string
	Locked   bool
}

func (s *Server) AddShiftPage(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*Session)

	s.render(w, r, s.shiftFormTmpl, shiftFormData{
		FullName: session.FullName,
		Title:    "Add Shift",
		Action:   "/shift/add",
	})
}

func (s *Server) AddShift(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*Session)
	data := shiftFormData{
		FullName: session.FullName,
		Title:    "Add Shift",
		Action:   "/shift/add",
	}

	form, msg := s.parseShiftForm(r)
	data.Form = form
	if msg != "" {
		data.Error = msg
		s.render(w, r, s.shiftFormTmpl, data)
		return
	}

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	if _, err := s.api.WithToken(session.Token).CreateShift(ctx, form.input()); err != nil {
		if shiftapi.IsUnauthenticated(err) {
			s.expireSession(w, r, session)
			return
		}
		data.Error = shiftapi.ErrorMessage(err)
		s.render(w, r, s.shiftFormTmpl, data)
		return
	}

	http.Redirect(w, r, "/shift", http.StatusSeeOther)
}

func (s *Server) EditShiftPage(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*Session)
	id := chi.URLParam(r, "id")
	data := shiftFormData{
		FullName: session.FullName,
		Title:    "Edit Shift",
		Action:   shiftpage.EditURL(id),
	}

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	shift, err := s.api.WithToken(session.Token).GetShift(ctx, id)
	if err != nil {
		if shiftapi.IsUnauthenticated(err) {
			s.expireSession(w, r, session)
			return
		}
		data.Error = shiftapi.ErrorMessage(err)
		data.Locked = true
		s.render(w, r, s.shiftFormTmpl, data)
		return
	}

	data.Form = shiftForm{
		Name:      shift.Name,
		Date:      shift.Date,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
	}
	if !shift.Week.IsDraft() {
		data.Error = shiftLockedMessage
		data.Locked = true
	}

	s.render(w, r, s.shiftFormTmpl, data)
}

func (s *Server) EditShift(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*Session)
	id := chi.URLParam(r, "id")
	data := shiftFormData{
		FullName: session.FullName,
		Title:    "Edit Shift",
		Action:   shiftpage.EditURL(id),
	}

	form, msg := s.parseShiftForm(r)
	data.Form = form
	if msg != "" {
		data.Error = msg
		s.render(w, r, s.shiftFormTmpl, data)
		return
	}

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	if _, err := s.api.WithToken(session.Token).UpdateShift(ctx, id, form.input()); err != nil {
		if shiftapi.IsUnauthenticated(err) {
			s.expireSession(w, r, session)
			return
		}
		data.Error = shiftapi.ErrorMessage(err)
		s.render(w, r, s.shiftFormTmpl, data)
		return
	}

	http.Redirect(w, r, "/shift", http.StatusSeeOther)
}

// parseShiftForm 解析并校验表单，校验失败时返回可以直接展示的错误信息
func (s *Server) parseShiftForm(r *http.Request) (shiftForm, string) {
	if err := r.ParseForm(); err != nil {
		return shiftForm{}, "Invalid form submission"
	}

	form := shiftForm{
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		Date:      r.PostFormValue("date"),
		StartTime: r.PostFormValue("startTime"),
		EndTime:   r.PostFormValue("endTime"),
	}

	if err := s.validate.Struct(form); err != nil {
		return form, utils.TranslateError(err, s.translator)
	}
	if err := utils.ValidateShiftTime(&domain.Shift{Date: form.Date, StartTime: form.StartTime, EndTime: form.EndTime}); err != nil {
		return form, err.Error()
	}

	return form, ""
}

func (f shiftForm) input() shiftapi.ShiftInput {
	return shiftapi.ShiftInput{
		Name:      f.Name,
		Date:      f.Date,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
	}
}
