package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-board/internal/config"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/utils"
)

// Repository 是 handler 用到的数据访问方法，*repository.Repository 实现了它
type Repository interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetActiveStaff() ([]*domain.User, error)

	GetShiftsByWeek(weekNumber, year int) ([]*domain.Shift, error)
	GetShiftByID(id string) (*domain.Shift, error)
	CreateShift(shift *domain.Shift) error
	UpdateShift(shift *domain.Shift) error
	DeleteShift(id string) error

	GetWeekByID(id string) (*domain.Week, error)
	CountShiftsByWeekID(id string) (int, error)
	PublishWeek(week *domain.Week) error
}

// MailPublisher 把邮件投递到消息队列，*amqp.Channel 实现了它
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Repository
	translator  ut.Translator
	mailChannel MailPublisher
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Repository, mailCh MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := utils.NewValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/me", h.GetMe)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetShifts)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateShift)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shift)
				r.Get("/", h.GetShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).With(h.preventModifyPublishedShift).Patch("/", h.UpdateShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).With(h.preventModifyPublishedShift).Delete("/", h.DeleteShift)
			})
		})

		r.Route("/weeks/{id}", func(r chi.Router) {
			r.Use(h.week)
			r.Get("/", h.GetWeek)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/publish", h.PublishWeek)
		})
	})
}
