package intake

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/models"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	client, _ := setupRedis(t)
	cache := NewRedisCache(client, 30*time.Minute)

	draft := models.IntakeDraft{
		UserID:    "user-1",
		Username:  "Aria",
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		PhaseOne:  map[string]string{"ign": "Aria"},
	}
	require.NoError(t, cache.Put(context.Background(), draft))

	got, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, draft.Username, got.Username)
	assert.Equal(t, "Aria", got.PhaseOne["ign"])
	assert.True(t, draft.StartedAt.Equal(got.StartedAt))
}

func TestRedisCacheMissingDraft(t *testing.T) {
	client, _ := setupRedis(t)
	cache := NewRedisCache(client, 30*time.Minute)

	_, ok, err := cache.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheExpiry(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewRedisCache(client, 30*time.Minute)

	require.NoError(t, cache.Put(context.Background(), models.IntakeDraft{UserID: "user-1"}))
	assert.Equal(t, 30*time.Minute, mr.TTL("intake:user-1"))

	mr.FastForward(31 * time.Minute)
	_, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheDelete(t *testing.T) {
	client, _ := setupRedis(t)
	cache := NewRedisCache(client, 30*time.Minute)

	require.NoError(t, cache.Put(context.Background(), models.IntakeDraft{UserID: "user-1"}))
	require.NoError(t, cache.Delete(context.Background(), "user-1"))

	_, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheBackendFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("intake:user-1").SetErr(assert.AnError)

	cache := NewRedisCache(client, 30*time.Minute)
	_, _, err := cache.Get(context.Background(), "user-1")
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeDraftCacheFailed))
}
