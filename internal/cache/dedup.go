package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedup answers "have we seen this key before" with a TTL, backed by
// redis SETNX.
type Dedup struct {
	client *redis.Client
}

func NewDedup(client *redis.Client) *Dedup {
	return &Dedup{client: client}
}

// FirstSeen returns true exactly once per key within the TTL.
func (d *Dedup) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: dedup %s: %w", key, err)
	}
	return ok, nil
}

// Forget drops the key so the next delivery is treated as new. Used
// when processing fails after the key was claimed.
func (d *Dedup) Forget(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: forget %s: %w", key, err)
	}
	return nil
}
