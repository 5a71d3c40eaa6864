package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftapi"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftpage"
)

type loginData struct {
	FullName string
	Error    string
	Username string
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.loginTmpl, loginData{})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, s.loginTmpl, loginData{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		s.render(w, r, s.loginTmpl, loginData{Error: "Username and password are required", Username: username})
		return
	}

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	token, user, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.render(w, r, s.loginTmpl, loginData{Error: shiftapi.ErrorMessage(err), Username: username})
		return
	}

	session := &Session{
		ID:       uuid.NewString(),
		Token:    token,
		FullName: user.FullName,
		Role:     string(user.Role),
		Page:     shiftpage.New(nil).State,
	}
	if err := s.store.Save(r.Context(), session); err != nil {
		s.internalError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  timeNow().Add(time.Duration(s.config.Session.Expiration) * time.Second),
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/shift", http.StatusFound)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := s.store.Delete(r.Context(), cookie.Value); err != nil {
			slog.Error("无法删除会话", "error", err)
		}
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// expireSession 在 API 凭证失效时丢弃会话，让用户重新登录
func (s *Server) expireSession(w http.ResponseWriter, r *http.Request, session *Session) {
	if err := s.store.Delete(r.Context(), session.ID); err != nil {
		slog.Error("无法删除会话", "error", err)
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
