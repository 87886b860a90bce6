package services

import (
	"context"
	"fmt"
	"time"
	"vip-order-api/internal/database"
	"vip-order-api/pkg/logging"

	"github.com/redis/go-redis/v9"
)

// RedisService provides Redis-backed rate limiting and VIP status
// caching. All operations degrade gracefully when Redis is not
// connected: rate limits fail open and cache lookups miss.
type RedisService struct{}

// NewRedisService creates a new Redis service instance.
func NewRedisService() *RedisService {
	return &RedisService{}
}

func (r *RedisService) available() bool {
	return database.GetRedis() != nil
}

// CheckOrderRateLimit reports whether the user recently created an
// order and must wait before creating another.
func (r *RedisService) CheckOrderRateLimit(userID uint) (bool, error) {
	if !r.available() {
		return false, nil
	}

	ctx := context.Background()
	key := fmt.Sprintf("order_rate_limit:%d", userID)

	exists, err := database.RedisClient.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// SetOrderRateLimit marks the user as rate limited for limitMinutes.
func (r *RedisService) SetOrderRateLimit(userID uint, limitMinutes int) error {
	if !r.available() {
		return nil
	}

	ctx := context.Background()
	key := fmt.Sprintf("order_rate_limit:%d", userID)
	expire := time.Duration(limitMinutes) * time.Minute
	return database.RedisClient.Set(ctx, key, "1", expire).Err()
}

// CacheVIPStatus stores the serialized VIP status payload for a user.
func (r *RedisService) CacheVIPStatus(userID uint, payload string, expire time.Duration) error {
	if !r.available() {
		return nil
	}
	return database.SetCache(context.Background(), vipStatusKey(userID), payload, expire)
}

// GetCachedVIPStatus returns the cached VIP status payload, if any.
func (r *RedisService) GetCachedVIPStatus(userID uint) (string, bool) {
	if !r.available() {
		return "", false
	}

	payload, err := database.GetCache(context.Background(), vipStatusKey(userID))
	if err != nil {
		if err != redis.Nil {
			// 缓存故障当作未命中，不影响主流程
			logging.Warnf("VIP status cache read failed for user %d: %v", userID, err)
		}
		return "", false
	}
	return payload, true
}

// InvalidateVIPStatus drops the cached VIP status after a grant so the
// next poll sees the fresh entitlement.
func (r *RedisService) InvalidateVIPStatus(userID uint) error {
	if !r.available() {
		return nil
	}
	return database.DeleteCache(context.Background(), vipStatusKey(userID))
}

func vipStatusKey(userID uint) string {
	return fmt.Sprintf("vip_status:%d", userID)
}
