package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the portal's TTL cache collaborator. Public content reads go
// through it; everything else bypasses it. A disabled cache is a no-op.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	Ping(ctx context.Context) error
}

// New returns a redis-backed cache, or a no-op one when addr is empty.
func New(addr string, db int) (Cache, error) {
	if addr == "" {
		return Noop{}, nil
	}
	client, err := openRedis(addr, db)
	if err != nil {
		return nil, err
	}
	return &redisCache{client: client}, nil
}

func openRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	// Best effort; a failed cache write never fails the request.
	c.client.Set(ctx, key, value, ttl)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop is the disabled cache: misses on every read, drops every write.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool)                  { return nil, false }
func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {}
func (Noop) Delete(ctx context.Context, keys ...string)                          {}
func (Noop) Ping(ctx context.Context) error                                      { return nil }
