package memory

import (
	"context"
	"sync"
	"time"

	"github.com/supercivilian/supercivilian/internal/core/ports"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache is an in-process ports.CacheService with per-key expiry. A
// janitor goroutine drops expired entries until Close.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// New starts a cache sweeping expired keys every interval.
func New(interval time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]entry),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if interval > 0 {
		go c.janitor(interval)
	}
	return c
}

// Get returns a copy of the value for key, or ports.ErrCacheMiss when
// absent or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return nil, ports.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value under key with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	v := make([]byte, len(value))
	copy(v, value)

	c.mu.Lock()
	c.items[key] = entry{value: v, expires: c.now().Add(time.Duration(ttlSeconds) * time.Second)}
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored keys, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.items {
		if !now.Before(e.expires) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}
