// Package web 渲染周班次管理页面，并把用户操作转发给 REST API
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/shift-board/internal/config"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftapi"
	"github.com/sysu-ecnc-dev/shift-board/internal/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

// timeNow 方便测试时固定当前时间
var timeNow = time.Now

type Server struct {
	config     *config.WebConfig
	api        *shiftapi.Client
	store      Store
	locks      *sessionLocks
	validate   *validator.Validate
	translator ut.Translator

	loginTmpl     *template.Template
	shiftTmpl     *template.Template
	shiftFormTmpl *template.Template

	Mux *chi.Mux
}

func NewServer(cfg *config.WebConfig, api *shiftapi.Client, store Store) (*Server, error) {
	validate, trans, err := utils.NewValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:     cfg,
		api:        api,
		store:      store,
		locks:      newSessionLocks(),
		validate:   validate,
		translator: trans,

		loginTmpl:     template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/login.html")),
		shiftTmpl:     template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/shift.html")),
		shiftFormTmpl: template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/shift_form.html")),

		Mux: chi.NewRouter(),
	}

	return s, nil
}

func (s *Server) RegisterRoutes() {
	s.Mux.Use(s.logger)
	s.Mux.Use(s.recoverer)
	s.Mux.Use(securityHeaders)

	s.Mux.Get("/login", s.LoginPage)
	s.Mux.Post("/login", s.Login)
	s.Mux.Post("/logout", s.Logout)

	s.Mux.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/shift", http.StatusFound)
		})

		r.Route("/shift", func(r chi.Router) {
			r.Get("/", s.ShiftPage)
			r.Post("/publish", s.PublishWeek)
			r.Route("/delete", func(r chi.Router) {
				r.Post("/cancel", s.CancelDelete)
				r.Post("/confirm", s.ConfirmDelete)
				r.Post("/{id}", s.OpenDelete)
			})
			r.Get("/add", s.AddShiftPage)
			r.Post("/add", s.AddShift)
			r.Get("/{id}/edit", s.EditShiftPage)
			r.Post("/{id}/edit", s.EditShift)
		})
	})
}

func (s *Server) apiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.config.API.Timeout)*time.Second)
}
