package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("已处理请求", "status", rec.status, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", v))
				// 堆栈直接打印，用 slog 输出会挤成一行
				fmt.Print(string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// auth 校验 cookie 中的 JWT，并把角色和用户 ID 放进 context
func (h *Handler) auth(next http.Handler) http.Handler {
	keyFunc := func(*jwt.Token) (any, error) {
		return []byte(h.config.JWT.Secret), nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(domain.AuthCookieName)
		if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
			h.errorResponse(w, r, "Not logged in")
			return
		}
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		claims := &AuthClaims{}
		if _, err := jwt.ParseWithClaims(cookie.Value, claims, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
			h.errorResponse(w, r, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(RoleCtxKey).(string)
			if !slices.Contains(roles, domain.Role(role)) {
				h.errorResponse(w, r, "Permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) shift(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shiftID := chi.URLParam(r, "id")
		if err := uuid.Validate(shiftID); err != nil {
			h.errorResponse(w, r, "Invalid shift ID")
			return
		}

		shift, err := h.repository.GetShiftByID(shiftID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Shift not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ShiftCtx, shift)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// 已发布周的班次不允许修改或删除
func (h *Handler) preventModifyPublishedShift(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shift := r.Context().Value(ShiftCtx).(*domain.Shift)
		if !shift.Week.IsDraft() {
			h.errorResponse(w, r, "The week of this shift is already published")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) week(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		weekID := chi.URLParam(r, "id")
		if err := uuid.Validate(weekID); err != nil {
			h.errorResponse(w, r, "Invalid week ID")
			return
		}

		week, err := h.repository.GetWeekByID(weekID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "Week not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), WeekCtx, week)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
