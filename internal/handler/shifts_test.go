package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/repository"
)

func TestPublishedShiftCannotBeModified(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPatch, "/shifts/"+publishedShift, `{"name":"Evening"}`, manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "The week of this shift is already published", resp.Message)
	assert.Equal(t, "Front Desk", env.repo.shifts[publishedShift].Name)

	resp = serve(t, env.h, http.MethodDelete, "/shifts/"+publishedShift, "", manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "The week of this shift is already published", resp.Message)
	assert.Contains(t, env.repo.shifts, publishedShift)
}

func TestCreateShiftInPublishedWeek(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPost, "/shifts", `{"name":"Late","date":"2024-01-11","startTime":"18:00","endTime":"20:00"}`, manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "The target week is already published", resp.Message)
	assert.Len(t, env.repo.shifts, 2)
}

func TestCreateShiftInDraftWeek(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPost, "/shifts", `{"name":"Late","date":"2024-01-04","startTime":"18:00","endTime":"20:00"}`, manager)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Created shift", resp.Message)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, draftWeekID, data["week"].(map[string]any)["id"])
}

func TestMoveShiftIntoPublishedWeek(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodPatch, "/shifts/"+draftShiftID, `{"date":"2024-01-10"}`, manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "The target week is already published", resp.Message)
	assert.Equal(t, draftWeekID, env.repo.shifts[draftShiftID].Week.ID)
}

func TestDeleteShift(t *testing.T) {
	env := newPublishEnv(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodDelete, "/shifts/"+draftShiftID, "", manager)
	require.True(t, resp.Success, resp.Message)
	assert.NotContains(t, env.repo.shifts, draftShiftID)
}

// 加载班次之后、删除之前该周被发布
func TestDeleteShiftRacingPublish(t *testing.T) {
	env := newPublishEnv(t)
	env.repo.deleteErr = repository.ErrWeekPublished
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, env.h, http.MethodDelete, "/shifts/"+draftShiftID, "", manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "The target week is already published", resp.Message)
}

func TestGetShiftsByWeek(t *testing.T) {
	env := newPublishEnv(t)
	staff := signToken(t, testSecret, domain.RoleStaff)

	resp := serve(t, env.h, http.MethodGet, "/shifts?week=1&year=2024", "", staff)
	require.True(t, resp.Success)

	results := resp.Data.(map[string]any)["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, draftShiftID, results[0].(map[string]any)["id"])
}
