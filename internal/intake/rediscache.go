// internal/intake/rediscache.go
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/models"
)

const draftKeyPrefix = "intake:"

// RedisCache keeps drafts in Redis so intake survives a process restart and
// can be shared across replicas. Expiry is delegated to Redis TTLs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func draftKey(userID string) string {
	return fmt.Sprintf("%s%s", draftKeyPrefix, userID)
}

func (c *RedisCache) Get(ctx context.Context, userID string) (models.IntakeDraft, bool, error) {
	raw, err := c.client.Get(ctx, draftKey(userID)).Result()
	if err == redis.Nil {
		return models.IntakeDraft{}, false, nil
	}
	if err != nil {
		return models.IntakeDraft{}, false, stderrors.NewDraftCacheFailedError(err)
	}

	var draft models.IntakeDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return models.IntakeDraft{}, false, stderrors.NewDraftCacheFailedError(err)
	}
	return draft, true, nil
}

func (c *RedisCache) Put(ctx context.Context, draft models.IntakeDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return stderrors.NewDraftCacheFailedError(err)
	}
	if err := c.client.Set(ctx, draftKey(draft.UserID), raw, c.ttl).Err(); err != nil {
		return stderrors.NewDraftCacheFailedError(err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return stderrors.NewDraftCacheFailedError(err)
	}
	return nil
}
