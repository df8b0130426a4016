package cache

import (
	"context"
	"time"
)

// NoopCache keeps the gateway serving when Redis is configured but
// unreachable at startup (spec.md §6 Environment) — a real REDIS_URL was
// given, so Health must report "error" rather than "disabled", which is why
// this is distinct from leaving Registry.cache nil. Connected() is always
// false and every Get is a miss.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dest interface{}) bool { return false }
func (NoopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {}
func (NoopCache) Flush(ctx context.Context)                                  {}
func (NoopCache) Connected() bool                                            { return false }
