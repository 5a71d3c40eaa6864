package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/repository"
	"github.com/sysu-ecnc-dev/shift-board/internal/utils"
)

type shiftRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil {
		h.errorResponse(w, r, "Invalid week")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.errorResponse(w, r, "Invalid year")
		return
	}
	if _, err := calendar.WeekStart(week, year); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.repository.GetShiftsByWeek(week, year)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched shifts", map[string]any{
		"results": shifts,
	})
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.Shift{
		Name:      req.Name,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := utils.ValidateShiftTime(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateShift(shift); err != nil {
		h.shiftWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "Created shift", shift)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	h.successResponse(w, r, "Fetched shift", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Name      *string `json:"name" validate:"omitnil,min=1,max=100"`
		Date      *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
		StartTime *string `json:"startTime" validate:"omitnil,datetime=15:04"`
		EndTime   *string `json:"endTime" validate:"omitnil,datetime=15:04"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.Date != nil {
		shift.Date = *req.Date
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}

	if err := utils.ValidateShiftTime(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShift(shift); err != nil {
		h.shiftWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "Updated shift", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Shift not found")
		default:
			h.shiftWriteError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Deleted shift", nil)
}

func (h *Handler) shiftWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, repository.ErrWeekPublished):
		h.errorResponse(w, r, "The target week is already published")
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "Please retry")
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shifts_time_check":
			h.errorResponse(w, r, "End time must be after start time")
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}
