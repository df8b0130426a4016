// Package cache implements the result cache (spec.md §4.D): a TTL-bounded
// best-effort store keyed by a canonical serialization of the request.
// Cache failures are swallowed — the gateway must keep serving on a cache
// outage — and flip Connected() to false until the next successful call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Version is bumped to invalidate every cache entry at once (spec.md §3
// Lifecycle: "subject to a cache-version prefix that allows global
// invalidation by bumping a constant").
const Version = "v1"

const (
	SearchTTL  = 60 * time.Second
	MappingTTL = 3600 * time.Second
)

// Cache is the interface the orchestrator consults. Get reports ok=false
// on both a miss and an error; callers never distinguish the two.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (ok bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Flush(ctx context.Context)
	Connected() bool
}

// SearchKey derives the deterministic cache key for a search request
// (spec.md §4.D, §8 round-trip law): canonical JSON of {q, ...options},
// sorted recursively at every depth, then SHA-256, prefixed with the
// cache version and handle.
func SearchKey(handle, query string, options interface{}) string {
	payload := map[string]interface{}{"q": query, "options": options}
	return "search:" + Version + ":" + handle + ":" + digest(payload)
}

// MappingKey derives the cache key for a mapping passthrough response.
func MappingKey(handle string) string {
	return Version + ":mapping:" + handle
}

func digest(v interface{}) string {
	canonical := canonicalize(toJSONValue(v))
	b, _ := json.Marshal(canonical)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// toJSONValue round-trips v through encoding/json so struct fields,
// pointers, and ordered maps all collapse to the same generic
// map[string]interface{}/[]interface{} shape before canonicalization.
func toJSONValue(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out interface{}
	_ = json.Unmarshal(b, &out)
	return out
}

// canonicalize sorts map keys recursively at every depth; arrays keep
// their insertion order. A shallow sort is insufficient (spec.md §9) —
// nested filter/option maps must also be sorted.
func canonicalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]orderedEntry, 0, len(keys))
		for _, k := range keys {
			out = append(out, orderedEntry{Key: k, Value: canonicalize(x[k])})
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return x
	}
}

// orderedEntry marshals as a two-element JSON array, which preserves the
// sorted key order in the final serialization (a Go map would not).
type orderedEntry struct {
	Key   string
	Value interface{}
}

func (e orderedEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Key, e.Value})
}
