package cache

import (
	"context"
	"errors"
	"fmt"
	"outlet-route-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ors:optimization:"

// RedisOptimizationCache stores raw optimizer responses keyed by a digest
// of the request that produced them. Entries expire after TTL.
type RedisOptimizationCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisOptimizationCache(client *redis.Client, ttl time.Duration) *RedisOptimizationCache {
	return &RedisOptimizationCache{Client: client, Prefix: defaultKeyPrefix, TTL: ttl}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis connect: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect: ping: %w", err)
	}

	return client, nil
}

func (c *RedisOptimizationCache) key(k string) string { return c.Prefix + k }

// Fetch a cached response. A miss is reported as ok=false with a nil error.
func (c *RedisOptimizationCache) GetResponse(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "optimization.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("optimization cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get optimization cache: key must not be empty")
	}

	b, err := c.Client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get optimization cache: %w", err)
	}

	return b, true, nil
}

// Store a response body under key for TTL.
func (c *RedisOptimizationCache) PutResponse(ctx context.Context, key string, body []byte) error {
	if c.Client == nil {
		return errors.New("optimization cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert optimization cache: key must not be empty")
	}
	if len(body) == 0 {
		return nil
	}

	if err := c.Client.Set(ctx, c.key(key), body, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert optimization cache: %w", err)
	}

	return nil
}
