package web

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftpage"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, 30*time.Minute), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	selected := "shift-1"
	session := &Session{
		ID:       "sess-1",
		Token:    "api-token",
		FullName: "Manager",
		Role:     "manager",
		Page: shiftpage.State{
			CurrentWeek: 1,
			CurrentYear: 2024,
			CurrentPage: 2,
			PerPage:     10,
			SelectedID:  &selected,
		},
	}
	require.NoError(t, store.Save(ctx, session))

	assert.True(t, mr.Exists("web_session_sess-1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("web_session_sess-1"))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestRedisStoreSaveRefreshesExpiration(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	session := &Session{ID: "sess-1", Token: "api-token"}
	require.NoError(t, store.Save(ctx, session))

	mr.FastForward(20 * time.Minute)
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, 30*time.Minute, mr.TTL("web_session_sess-1"))

	mr.FastForward(31 * time.Minute)
	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreMissingSession(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "sess-1"}))
	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.False(t, mr.Exists("web_session_sess-1"))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// 删除不存在的会话不是错误
	assert.NoError(t, store.Delete(ctx, "sess-1"))
}

func TestRedisStoreCorruptSession(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("web_session_sess-1", "not json"))
	_, err := store.Load(context.Background(), "sess-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
