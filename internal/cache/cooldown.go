package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown grants a key at most once per window.
type Cooldown interface {
	// Acquire reports whether key was free and, if so, blocks it for ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key before its window ends.
	Release(ctx context.Context, key string) error
}

// RedisCooldown shares cooldown windows between API instances.
type RedisCooldown struct {
	client *redis.Client
	prefix string
}

func NewRedisCooldown(client *redis.Client, prefix string) *RedisCooldown {
	return &RedisCooldown{client: client, prefix: prefix}
}

func (c *RedisCooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	return c.client.SetNX(ctx, c.prefix+key, 1, ttl).Result()
}

func (c *RedisCooldown) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// MemoryCooldown keeps cooldown windows in process memory.
type MemoryCooldown struct {
	mu      sync.Mutex
	until   map[string]time.Time
	nowFunc func() time.Time
}

func NewMemoryCooldown() *MemoryCooldown {
	return &MemoryCooldown{until: make(map[string]time.Time), nowFunc: time.Now}
}

// WithClock replaces the time source.
func (c *MemoryCooldown) WithClock(now func() time.Time) *MemoryCooldown {
	c.nowFunc = now
	return c
}

func (c *MemoryCooldown) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if until, ok := c.until[key]; ok && now.Before(until) {
		return false, nil
	}
	c.until[key] = now.Add(ttl)

	// Drop stale windows so the map does not grow with every address ever seen.
	for k, until := range c.until {
		if !now.Before(until) {
			delete(c.until, k)
		}
	}
	return true, nil
}

func (c *MemoryCooldown) Release(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.until, key)
	c.mu.Unlock()
	return nil
}
