package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"searchbot/config"
	"searchbot/types"

	"github.com/redis/go-redis/v9"
)

// Cache stores aggregated web content per query
type Cache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Set(ctx context.Context, query, content string) error
}

// RedisConfig configures the Redis connection and key layout
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisCache is a Redis-backed Cache with a fixed TTL per entry
type RedisCache struct {
	client redis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

// NewRedisCacheFromConfig creates a RedisCache from the server config.
// It returns nil, nil when REDIS_ADDR is unset.
func NewRedisCacheFromConfig(cfg config.Config) (*RedisCache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	return NewRedisCache(RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
}

// NewRedisCache creates a RedisCache and verifies connectivity
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return newRedisCache(client, client.Close, cfg), nil
}

func newRedisCache(client redis.Cmdable, closer func() error, cfg RedisConfig) *RedisCache {
	if cfg.Prefix == "" {
		cfg.Prefix = config.DefaultCacheKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = config.DefaultCacheTTL
	}
	return &RedisCache{client: client, closer: closer, prefix: cfg.Prefix, ttl: cfg.TTL}
}

// Close closes the underlying Redis client
func (r *RedisCache) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Get returns the cached content for query, reporting whether it was present
func (r *RedisCache) Get(ctx context.Context, query string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.Key(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores content for query with the configured TTL
func (r *RedisCache) Set(ctx context.Context, query, content string) error {
	return r.client.Set(ctx, r.Key(query), content, r.ttl).Err()
}

// Key returns the Redis key for a query. Queries differing only in case or
// spacing share a key.
func (r *RedisCache) Key(query string) string {
	return r.prefix + types.GenerateID(NormalizeQuery(query))
}

// NormalizeQuery lowercases and collapses whitespace
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
