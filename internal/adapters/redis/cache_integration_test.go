//go:build integration
// +build integration

package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/supercivilian/supercivilian/internal/core/ports"
)

func testAddr() string {
	if addr := os.Getenv("SUPERCIVILIAN_CACHE_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// newTestCache connects to SUPERCIVILIAN_CACHE_ADDR (default localhost:6379).
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(context.Background(), testAddr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCache_Integration_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "test:redis:" + time.Now().Format(time.RFC3339Nano)

	if _, err := c.Get(ctx, key); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	value := []byte{0x00, 0xff, '"', 'x'}
	if err := c.Set(ctx, key, value, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("expected %q, got %q", value, got)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, key); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestCache_Integration_Expiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "test:redis:ttl:" + time.Now().Format(time.RFC3339Nano)

	if err := c.Set(ctx, key, []byte("v"), 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)
	if _, err := c.Get(ctx, key); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestCache_Integration_Ping(t *testing.T) {
	if err := newTestCache(t).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestCache_Integration_WithClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testAddr(), DB: 1})
	c := NewWithClient(client)
	t.Cleanup(c.Close)
	ctx := context.Background()
	key := "test:redis:client:" + time.Now().Format(time.RFC3339Nano)

	if err := c.Set(ctx, key, []byte("v"), 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, key).Result()
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if got != "v" {
		t.Errorf("expected v, got %q", got)
	}
	_ = c.Delete(ctx, key)
}
