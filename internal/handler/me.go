package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
)

// GetMe 返回当前登录的用户
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid token")
		return
	}

	user, err := h.repository.GetUserByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Fetched current user", user)
}
