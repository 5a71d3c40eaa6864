package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftapi"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftpage"
)

type shiftPageData struct {
	FullName string
	View     shiftpage.View
}

// ShiftPage 不带参数访问时重新加载当前周；带分页或排序参数时沿用会话中保存的状态
func (s *Server) ShiftPage(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*Session)
	svc := s.api.WithToken(session.Token)

	query := r.URL.Query()
	page := shiftpage.Restore(svc, session.Page)

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	if page.CurrentWeek != 0 && (query.Has("page") || query.Has("sort") || query.Has("per_page")) {
		if perPage, err := strconv.Atoi(query.Get("per_page")); err == nil {
			page.SetPerPage(perPage)
		}
		if sort := query.Get("sort"); sort != "" {
			page.SetSort(shiftpage.Column(sort), query.Get("dir") == "desc")
		}
		if n, err := strconv.Atoi(query.Get("page")); err == nil {
			page.SetPage(n)
		}
	} else {
		page = shiftpage.New(svc)
		page.SetPerPage(s.config.PageSize)
		page.Mount(ctx, timeNow())
	}

	if shiftapi.IsUnauthenticated(page.Err()) {
		s.expireSession(w, r, session)
		return
	}

	session.Page = page.State
	if err := s.store.Save(r.Context(), session); err != nil {
		s.internalError(w, r, err)
		return
	}

	s.render(w, r, s.shiftTmpl, shiftPageData{
		FullName: session.FullName,
		View:     page.View(),
	})
}

func (s *Server) OpenDelete(w http.ResponseWriter, r *http.Request) {
	s.updatePage(w, r, func(page *shiftpage.Page) {
		page.OpenDelete(chi.URLParam(r, "id"))
	})
}

func (s *Server) CancelDelete(w http.ResponseWriter, r *http.Request) {
	s.updatePage(w, r, func(page *shiftpage.Page) {
		page.CloseDelete()
	})
}

func (s *Server) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	s.updatePage(w, r, func(page *shiftpage.Page) {
		page.ConfirmDelete(ctx)
	})
}

func (s *Server) PublishWeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	s.updatePage(w, r, func(page *shiftpage.Page) {
		page.Publish(ctx)
	})
}

// updatePage 在会话保存的页面状态上执行一次操作，然后重定向回页面
func (s *Server) updatePage(w http.ResponseWriter, r *http.Request, action func(page *shiftpage.Page)) {
	session := r.Context().Value(SessionCtx).(*Session)
	page := shiftpage.Restore(s.api.WithToken(session.Token), session.Page)

	action(page)

	if shiftapi.IsUnauthenticated(page.Err()) {
		s.expireSession(w, r, session)
		return
	}

	session.Page = page.State
	if err := s.store.Save(r.Context(), session); err != nil {
		s.internalError(w, r, err)
		return
	}

	http.Redirect(w, r, pageURL(page), http.StatusSeeOther)
}

func pageURL(page *shiftpage.Page) string {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.CurrentPage))
	return "/shift?" + query.Encode()
}
