package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Velimir1992/parkbooking/config"
	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	spotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, spotsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		spotsTTL: spotsTTL,
	}
}

func (c *RedisCache) GetSpots(ctx context.Context) ([]domain.Spot, error) {
	data, err := c.client.Get(ctx, spotsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var spots []domain.Spot
	if err := json.Unmarshal(data, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

func (c *RedisCache) SetSpots(ctx context.Context, spots []domain.Spot) error {
	payload, err := json.Marshal(spots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, spotsKey(), payload, c.spotsTTL).Err()
}

// AcquireSpotLock takes the per-spot critical section used to serialize
// check-then-reserve for one spot. The value is the saga id of the
// holder, and the TTL bounds how long a crashed saga can keep the spot
// closed to other bookings.
func (c *RedisCache) AcquireSpotLock(ctx context.Context, spotID int64, sagaID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, spotLockKey(spotID), sagaID, ttl).Result()
}

func (c *RedisCache) ReleaseSpotLock(ctx context.Context, spotID int64) error {
	return c.client.Del(ctx, spotLockKey(spotID)).Err()
}

func spotsKey() string {
	return "cache:spots"
}

func spotLockKey(spotID int64) string {
	return fmt.Sprintf("lock:spot:%d", spotID)
}
