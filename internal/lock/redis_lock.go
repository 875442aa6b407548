package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock implements DriverLock on Redis SetNX, for deployments where
// operators run the tool from more than one host against the same
// workbook share.
type RedisLock struct {
	client *redis.Client
}

// NewRedisLock creates a RedisLock.
func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

// Acquire implements DriverLock.
func (l *RedisLock) Acquire(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(driverID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire driver lock: %w", err)
	}
	return ok, nil
}

// Release implements DriverLock.
func (l *RedisLock) Release(ctx context.Context, driverID string) error {
	if err := l.client.Del(ctx, lockKey(driverID)).Err(); err != nil {
		return fmt.Errorf("failed to release driver lock: %w", err)
	}
	return nil
}

func lockKey(driverID string) string {
	return fmt.Sprintf("lock:driver:%s", driverID)
}
