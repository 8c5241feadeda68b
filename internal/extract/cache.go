package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "parse-url:"

// CachedExtractor serves repeated parses of the same URL from Redis. Cache
// failures are logged and fall through to the wrapped parser.
type CachedExtractor struct {
	next   Parser
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedExtractor wraps next with a Redis cache.
func NewCachedExtractor(next Parser, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedExtractor {
	return &CachedExtractor{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Extract returns the readable content of a page as HTML.
func (c *CachedExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	page, err := c.Parse(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return page.Content, nil
}

// Parse returns a cached page or parses and caches it. Failures are not cached.
func (c *CachedExtractor) Parse(ctx context.Context, rawURL string) (*Page, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	key := cacheKey(u.String())

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page Page
		if err := json.Unmarshal(data, &page); err == nil {
			c.logger.Debug("parse cache hit", "url", u.String())
			return &page, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("parse cache read failed", "error", err)
	}

	page, err := c.next.Parse(ctx, u.String())
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("parse cache write failed", "error", err)
		}
	}
	return page, nil
}
