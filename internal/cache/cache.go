// Package cache wraps a Redis client that fails safe on reads: an unreachable
// Redis behaves like an empty cache instead of failing the request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatbox-backend/internal/logging"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client. Reads fail safe by treating connectivity errors
// as misses; writes return them.
// A nil *Client is valid and behaves as a permanently empty cache.
type Client struct {
	client *redis.Client
	log    *slog.Logger
}

// New creates a new Redis client. An empty addr disables caching and returns nil.
func New(addr, password string, db int, logger *slog.Logger) *Client {
	if addr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts), log: logging.Component(logger, "cache")}
}

// Ping checks connectivity. It is only used for startup diagnostics.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		// fail safe: behave like cache miss
		c.log.WarnContext(ctx, "redis get failed", "key", key, "error", err)
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL. Unlike reads, a failed write is reported so
// callers never assume a key was stored.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "redis set failed", "key", key, "error", err)
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
