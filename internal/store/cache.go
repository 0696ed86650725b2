package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openstay/marketplace/backend/internal/observability"
)

// Cache is a JSON read cache over Redis, used cache-aside for listing
// detail and reference taxonomy reads.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get reports whether the key was present and, if so, unmarshals the
// cached value into dst.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return c.rdb.Del(ctx, key).Err()
}
