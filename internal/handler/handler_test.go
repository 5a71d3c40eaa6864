package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-board/internal/config"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return newHandlerWith(t, newFakeRepository(), &fakePublisher{}, nil)
}

func newHandlerWith(t *testing.T, repo Repository, mail MailPublisher, rdb *redis.Client) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.Expiration = 1
	cfg.Redis.OperationTimeout = 5
	cfg.Redis.PublishLockTTL = 30
	cfg.RabbitMQ.Queue = "email_queue"
	cfg.RabbitMQ.PublishTimeout = 5

	h, err := NewHandler(cfg, repo, mail, rdb)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func signToken(t *testing.T, secret string, role domain.Role) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   "1",
		},
	})
	ss, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return ss
}

func serve(t *testing.T, h *Handler, method, target, body, token string) Response {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: domain.AuthCookieName, Value: token})
	}

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestAuthRequired(t *testing.T) {
	h := newTestHandler(t)

	resp := serve(t, h, http.MethodGet, "/shifts?week=1&year=2024", "", "")
	assert.False(t, resp.Success)
	assert.Equal(t, "Not logged in", resp.Message)

	resp = serve(t, h, http.MethodGet, "/shifts?week=1&year=2024", "", signToken(t, "other-secret", domain.RoleManager))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid token", resp.Message)
}

func TestManagerOnlyRoutes(t *testing.T) {
	h := newTestHandler(t)
	staff := signToken(t, testSecret, domain.RoleStaff)

	resp := serve(t, h, http.MethodPost, "/shifts", `{"name":"Morning"}`, staff)
	assert.False(t, resp.Success)
	assert.Equal(t, "Permission denied", resp.Message)
}

func TestInvalidIDs(t *testing.T) {
	h := newTestHandler(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, h, http.MethodGet, "/shifts/not-a-uuid", "", manager)
	assert.Equal(t, "Invalid shift ID", resp.Message)

	resp = serve(t, h, http.MethodDelete, "/shifts/not-a-uuid", "", manager)
	assert.Equal(t, "Invalid shift ID", resp.Message)

	resp = serve(t, h, http.MethodPost, "/weeks/not-a-uuid/publish", "", manager)
	assert.Equal(t, "Invalid week ID", resp.Message)
}

func TestGetShiftsValidatesWeek(t *testing.T) {
	h := newTestHandler(t)
	staff := signToken(t, testSecret, domain.RoleStaff)

	resp := serve(t, h, http.MethodGet, "/shifts?week=abc&year=2024", "", staff)
	assert.Equal(t, "Invalid week", resp.Message)

	resp = serve(t, h, http.MethodGet, "/shifts?week=1", "", staff)
	assert.Equal(t, "Invalid year", resp.Message)

	resp = serve(t, h, http.MethodGet, "/shifts?week=54&year=2024", "", staff)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "out of range")
}

func TestCreateShiftValidation(t *testing.T) {
	h := newTestHandler(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, h, http.MethodPost, "/shifts", `{"date":"2024-01-02","startTime":"09:00","endTime":"10:00"}`, manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "Name is a required field", resp.Message)

	resp = serve(t, h, http.MethodPost, "/shifts", `{"name":"Morning","date":"2024-01-02","startTime":"10:00","endTime":"09:00"}`, manager)
	assert.False(t, resp.Success)
	assert.Equal(t, "end time must be after start time", resp.Message)
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler(t)

	resp := serve(t, h, http.MethodPost, "/auth/login", `{"username":"manager"}`, "")
	assert.False(t, resp.Success)
	assert.Equal(t, "Password is a required field", resp.Message)
}

func TestGetMeRejectsBadSubject(t *testing.T) {
	h := newTestHandler(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(domain.RoleStaff),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   "not-a-number",
		},
	})
	ss, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp := serve(t, h, http.MethodGet, "/me", "", ss)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid token", resp.Message)
}

func TestGetMe(t *testing.T) {
	repo := newFakeRepository()
	repo.users[1] = &domain.User{ID: 1, Username: "alice", FullName: "Alice", Role: domain.RoleStaff, IsActive: true, PasswordHash: "hash"}
	h := newHandlerWith(t, repo, &fakePublisher{}, nil)

	resp := serve(t, h, http.MethodGet, "/me", "", signToken(t, testSecret, domain.RoleStaff))
	require.True(t, resp.Success)
	assert.Equal(t, "Fetched current user", resp.Message)

	user := resp.Data.(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "Alice", user["fullName"])
	assert.NotContains(t, user, "passwordHash")

	delete(repo.users, 1)
	resp = serve(t, h, http.MethodGet, "/me", "", signToken(t, testSecret, domain.RoleStaff))
	assert.False(t, resp.Success)
	assert.Equal(t, "User not found", resp.Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, domain.AuthCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	h := newTestHandler(t)
	manager := signToken(t, testSecret, domain.RoleManager)

	resp := serve(t, h, http.MethodPost, "/shifts", `{"name":"Morning","extra":1}`, manager)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "extra")

	resp = serve(t, h, http.MethodPost, "/shifts", `{"name":`, manager)
	assert.Equal(t, "request body is not valid JSON", resp.Message)
}
