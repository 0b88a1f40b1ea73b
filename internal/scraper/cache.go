package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spigell/liquidhire/internal/jobs"
)

const keyPrefix = "liquidhire:jobs:"

// Cache stores finished searches.
type Cache interface {
	Get(ctx context.Context, key string) ([]jobs.Listing, bool, error)
	Set(ctx context.Context, key string, listings []jobs.Listing) error
}

// CacheKey derives the cache key of a search from its location and skills.
func CacheKey(location string, skills []string) string {
	normalized := make([]string, 0, len(skills))
	for _, skill := range skills {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(skill)))
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(location)) + "|" + strings.Join(normalized, ",")))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// RedisCache keeps listings in Redis with a TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at rawURL.
func NewRedisCache(rawURL string, ttl time.Duration) (*RedisCache, *redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	return &RedisCache{client: client, ttl: ttl}, client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]jobs.Listing, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached jobs: %w", err)
	}

	var listings []jobs.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false, fmt.Errorf("decode cached jobs: %w", err)
	}
	return listings, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, listings []jobs.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode jobs: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache jobs: %w", err)
	}
	return nil
}
