package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

const (
	draftWeekID     = "0b7e5f0c-6a43-4d7e-9d51-1f0a3c8b2a01"
	publishedWeekID = "0b7e5f0c-6a43-4d7e-9d51-1f0a3c8b2a02"
	emptyWeekID     = "0b7e5f0c-6a43-4d7e-9d51-1f0a3c8b2a03"
	draftShiftID    = "5d2c9e11-8f3b-4b0a-a6c4-7e9d1b2c3f01"
	publishedShift  = "5d2c9e11-8f3b-4b0a-a6c4-7e9d1b2c3f02"
)

type publishEnv struct {
	h    *Handler
	repo *fakeRepository
	mail *fakePublisher
	mr   *miniredis.Miniredis
}

// 2024 年第 1 周是草稿，第 2 周已发布，第 3 周是没有班次的草稿
func newPublishEnv(t *testing.T) *publishEnv {
	t.Helper()

	repo := newFakeRepository()
	repo.users[1] = &domain.User{ID: 1, Username: "manager", FullName: "Manager", Email: "manager@example.com", Role: domain.RoleManager, IsActive: true}
	repo.users[2] = &domain.User{ID: 2, Username: "alice", FullName: "Alice", Email: "alice@example.com", Role: domain.RoleStaff, IsActive: true}
	repo.users[3] = &domain.User{ID: 3, Username: "bob", FullName: "Bob", Email: "bob@example.com", Role: domain.RoleStaff, IsActive: false}

	repo.addWeek(draftWeekID, 1, 2024, domain.WeekStatusDraft)
	repo.addWeek(publishedWeekID, 2, 2024, domain.WeekStatusPublished)
	repo.addWeek(emptyWeekID, 3, 2024, domain.WeekStatusDraft)
	repo.addShift(draftShiftID, draftWeekID, "2024-01-03")
	repo.addShift(publishedShift, publishedWeekID, "2024-01-10")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mail := &fakePublisher{}
	return &publishEnv{
		h:    newHandlerWith(t, repo, mail, rdb),
		repo: repo,
		mail: mail,
		mr:   mr,
	}
}

func TestPublishDraftWeek(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPost, "/weeks/"+draftWeekID+"/publish", "", manager)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Published week", resp.Message)
	assert.Equal(t, string(domain.WeekStatusPublished), resp.Data.(map[string]any)["status"])

	assert.Equal(t, domain.WeekStatusPublished, env.repo.weeks[draftWeekID].Status)
	assert.False(t, env.mr.Exists("publish_lock_week_"+draftWeekID))

	// 只通知在职员工
	require.Len(t, env.mail.msgs, 1)
	assert.Equal(t, "email_queue", env.mail.keys[0])
	assert.Equal(t, "application/json", env.mail.msgs[0].ContentType)

	var msg struct {
		Type string                       `json:"type"`
		To   string                       `json:"to"`
		Data domain.WeekPublishedMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.mail.msgs[0].Body, &msg))
	assert.Equal(t, domain.MailTypeWeekPublished, msg.Type)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, 1, msg.Data.ShiftCount)
	assert.Equal(t, "2024-01-01", msg.Data.StartDate)
	assert.Equal(t, "2024-01-07", msg.Data.EndDate)
}

func TestPublishAlreadyPublishedWeek(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPost, "/weeks/"+publishedWeekID+"/publish", "", manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "This week is already published", resp.Message)
	assert.Empty(t, env.mail.msgs)
}

func TestPublishEmptyWeek(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPost, "/weeks/"+emptyWeekID+"/publish", "", manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "Cannot publish a week without shifts", resp.Message)
	assert.Equal(t, domain.WeekStatusDraft, env.repo.weeks[emptyWeekID].Status)
}

func TestPublishWhileLockHeld(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	lockKey := "publish_lock_week_" + draftWeekID
	require.NoError(t, env.mr.Set(lockKey, "1"))

	resp := serve(t, env.h, http.MethodPost, "/weeks/"+draftWeekID+"/publish", "", manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "This week is being published, please retry later", resp.Message)

	// 别人持有的锁不能被释放
	assert.True(t, env.mr.Exists(lockKey))
	assert.Equal(t, domain.WeekStatusDraft, env.repo.weeks[draftWeekID].Status)
	assert.Empty(t, env.mail.msgs)
}

func TestPublishSucceedsWhenMailFails(t *testing.T) {
	env := newPublishEnv(t)
	env.mail.err = errors.New("channel closed")
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPost, "/weeks/"+draftWeekID+"/publish", "", manager)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.WeekStatusPublished, env.repo.weeks[draftWeekID].Status)
	assert.False(t, env.mr.Exists("publish_lock_week_"+draftWeekID))
}

func TestPublishRequiresManager(t *testing.T) {
	env := newPublishEnv(t)
	staff := signToken(t, testSecret, domain.RoleStaff)

	resp := serve(t, env.h, http.MethodPost, "/weeks/"+draftWeekID+"/publish", "", staff)
	assert.Equal(t, "Permission denied", resp.Message)
	assert.Equal(t, domain.WeekStatusDraft, env.repo.weeks[draftWeekID].Status)
}

func TestGetWeek(t *testing.T) {
	env := newPublishEnv(t)
	staff := signToken(t, testSecret, domain.RoleStaff)

	resp := serve(t, env.h, http.MethodGet, "/weeks/"+publishedWeekID, "", staff)
	require.True(t, resp.Success)
	assert.Equal(t, "published", resp.Data.(map[string]any)["status"])

	resp = serve(t, env.h, http.MethodGet, "/weeks/0b7e5f0c-6a43-4d7e-9d51-1f0a3c8b2aff", "", staff)
	assert.False(t, resp.Success)
	assert.Equal(t, "Week not found", resp.Message)
}
