package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisCounters backs the aggregate usage counters with Redis INCRBY, so
// totals survive restarts alongside the persisted collections.
type RedisCounters struct {
	client *redisv9.Client
	names  []string
}

func NewRedisCounters(client *redisv9.Client, names []string) *RedisCounters {
	return &RedisCounters{client: client, names: names}
}

func (c *RedisCounters) Add(ctx context.Context, name string, delta int64) error {
	if err := c.client.IncrBy(ctx, counterKey(name), delta).Err(); err != nil {
		return fmt.Errorf("redis incr counter failed: %w", err)
	}
	return nil
}

func (c *RedisCounters) Totals(ctx context.Context) (map[string]int64, error) {
	keys := make([]string, len(c.names))
	for i, name := range c.names {
		keys[i] = counterKey(name)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read counters failed: %w", err)
	}

	totals := make(map[string]int64, len(c.names))
	for i, name := range c.names {
		totals[name] = 0
		if raw, ok := values[i].(string); ok {
			if v, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				totals[name] = v
			}
		}
	}
	return totals, nil
}

func counterKey(name string) string {
	return "stats:" + name
}

// MemoryCounters is the in-process fallback used when Redis is disabled.
type MemoryCounters struct {
	mu     sync.Mutex
	totals map[string]int64
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{totals: make(map[string]int64)}
}

func (c *MemoryCounters) Add(_ context.Context, name string, delta int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[name] += delta
	return nil
}

func (c *MemoryCounters) Totals(_ context.Context) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.totals))
	for k, v := range c.totals {
		out[k] = v
	}
	return out, nil
}
