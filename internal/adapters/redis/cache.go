package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/supercivilian/supercivilian/internal/core/ports"
)

// Cache implements ports.CacheService on a Redis server.
type Cache struct {
	client *redis.Client
}

// New connects to addr and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return &Cache{client: client}, nil
}

// NewWithClient wraps an already configured client, for callers that need
// options New does not expose.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the value for key, or ports.ErrCacheMiss when absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	return b, err
}

// Set stores value under key with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return c.client.Set(ctx, key, value, time.Duration(ttlSeconds)*time.Second).Err()
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Ping checks that the server answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (c *Cache) Close() {
	_ = c.client.Close()
}
