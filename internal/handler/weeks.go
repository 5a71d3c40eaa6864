package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	week := r.Context().Value(WeekCtx).(*domain.Week)

	h.successResponse(w, r, "Fetched week", week)
}

func (h *Handler) PublishWeek(w http.ResponseWriter, r *http.Request) {
	week := r.Context().Value(WeekCtx).(*domain.Week)

	if !week.IsDraft() {
		h.errorResponse(w, r, "This week is already published")
		return
	}

	shiftCount, err := h.repository.CountShiftsByWeekID(week.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if shiftCount == 0 {
		h.errorResponse(w, r, "Cannot publish a week without shifts")
		return
	}

	// 同一周同一时间只允许一个发布请求
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	lockKey := fmt.Sprintf("publish_lock_week_%s", week.ID)
	acquired, err := h.redisClient.SetNX(ctx, lockKey, 1, time.Duration(h.config.Redis.PublishLockTTL)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.errorResponse(w, r, "This week is being published, please retry later")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
		defer cancel()
		if err := h.redisClient.Del(ctx, lockKey).Err(); err != nil {
			slog.Error("无法释放发布锁", "week", week.ID, "error", err)
		}
	}()

	if err := h.repository.PublishWeek(week); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 通知发送失败不影响发布结果，只记录日志
	if err := h.notifyWeekPublished(week, shiftCount); err != nil {
		slog.Error("无法发送发布通知", "week", week.ID, "error", err)
	}

	h.successResponse(w, r, "Published week", week)
}

func (h *Handler) notifyWeekPublished(week *domain.Week, shiftCount int) error {
	staff, err := h.repository.GetActiveStaff()
	if err != nil {
		return err
	}

	monday, err := calendar.WeekStart(week.WeekNumber, week.Year)
	if err != nil {
		return err
	}
	startDate, endDate := calendar.GetWeekRange(monday)

	for _, user := range staff {
		mailMessage := domain.MailMessage{
			Type: domain.MailTypeWeekPublished,
			To:   user.Email,
			Data: domain.WeekPublishedMailData{
				FullName:    user.FullName,
				WeekNumber:  week.WeekNumber,
				Year:        week.Year,
				StartDate:   startDate,
				EndDate:     endDate,
				PublishedAt: calendar.FormatPublishedDate(week.UpdatedAt),
				ShiftCount:  shiftCount,
			},
		}

		if err := h.publishMail(mailMessage); err != nil {
			return err
		}
	}

	return nil
}

func (h *Handler) publishMail(mailMessage domain.MailMessage) error {
	// 序列化邮件
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	// 发送邮件到消息队列中
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         mailData,
		},
	)
}
