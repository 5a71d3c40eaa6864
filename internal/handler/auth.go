package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid username or password"

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if errors.Is(err, sql.ErrNoRows) {
		h.errorResponse(w, r, invalidCredentials)
		return
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		h.errorResponse(w, r, invalidCredentials)
		return
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !user.IsActive {
		h.errorResponse(w, r, "Account is disabled")
		return
	}

	token, expiresAt, err := h.issueToken(user)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	http.SetCookie(w, h.authCookie(token, expiresAt))
	h.successResponse(w, r, "Logged in", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.authCookie("", time.Unix(0, 0)))
	h.successResponse(w, r, "Logged out", nil)
}

// issueToken 签发 HS256 的 JWT，subject 是用户 ID
func (h *Handler) issueToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	return ss, expiresAt, err
}

func (h *Handler) authCookie(value string, expiresAt time.Time) *http.Cookie {
	production := h.config.Environment == "production"

	cookie := &http.Cookie{
		Name:     domain.AuthCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   production,
	}
	if production {
		cookie.SameSite = http.SameSiteStrictMode
	}

	return cookie
}
