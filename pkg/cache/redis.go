package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	maperrors "github.com/matzehuels/papermap/pkg/errors"
)

// keyPrefix namespaces entries in a shared Redis.
const keyPrefix = "papermap:"

// RedisCache shares converted artifacts between machines, for example CI
// runners rendering the same maps.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the server described by url
// (redis://[user:pass@]host:port/db) and checks that it answers.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrCodeInvalidInput, err, "parse cache url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, maperrors.Wrap(maperrors.ErrCodeUnsupported, err, "connect to %s", opts.Addr)
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyPrefix+key).Err()
}

// Close closes the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
