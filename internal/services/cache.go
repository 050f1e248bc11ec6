package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dailyquest-app/dailyquest-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// LeaderboardCacheTTL keeps the leaderboard snappy without serving long-stale ranks
	LeaderboardCacheTTL = 30 * time.Second
)

// CacheService provides short-lived JSON caching in Redis for read-heavy
// endpoints (currently the leaderboard).
type CacheService struct{}

// Get retrieves a value from cache. A miss is (false, nil), not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetWithTTL stores a value in cache with the given TTL.
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, CacheKeyPrefix+key, data, ttl).Err()
}

// Delete removes a cached value (used to invalidate the leaderboard when a
// score changes).
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return database.RedisClient.Del(ctx, CacheKeyPrefix+key).Err()
}
