package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platformbuilds/search-gateway/internal/metrics"
	"github.com/platformbuilds/search-gateway/pkg/logger"
)

// RedisCache implements Cache against a single-node Redis/Valkey instance,
// grounded on the teacher's pkg/cache valkeySingleImpl: ping on construct,
// swallow errors and flip connected false, record hit/miss/error counters.
type RedisCache struct {
	client    *redis.Client
	log       logger.Logger
	connected atomic.Bool
}

// NewRedisCache dials addr and pings it once; a failed ping is returned as
// an error so the caller can decide whether to fall back to NoopCache.
func NewRedisCache(addr string, log logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	c := &RedisCache{client: client, log: log}
	c.connected.Store(true)
	return c, nil
}

func (c *RedisCache) Connected() bool { return c.connected.Load() }

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	b, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheOperation("get", "miss")
		c.connected.Store(true)
		return false
	}
	if err != nil {
		c.log.Warn("cache get failed", "key", key, "error", err)
		metrics.RecordCacheOperation("get", "error")
		c.connected.Store(false)
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		c.log.Warn("cache value unmarshal failed", "key", key, "error", err)
		metrics.RecordCacheOperation("get", "error")
		return false
	}
	metrics.RecordCacheOperation("get", "hit")
	c.connected.Store(true)
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache value marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
		metrics.RecordCacheOperation("set", "error")
		c.connected.Store(false)
		return
	}
	metrics.RecordCacheOperation("set", "success")
	c.connected.Store(true)
}

func (c *RedisCache) Flush(ctx context.Context) {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.log.Warn("cache flush failed", "error", err)
		c.connected.Store(false)
	}
}
