// Package cache provides an optional Redis-backed read-through cache in
// front of the store, the same role the teacher's database package gives
// Redis for subscriber/session lookups. When REDIS_ADDR is unset, Cache is
// nil-safe: every method degrades to a cache miss so callers always fall
// through to the store without a feature flag check at each call site.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache wraps a *redis.Client. A nil *Cache (or one built from an empty
// address) behaves as an always-miss cache.
type Cache struct {
	client *redis.Client
	log    *logrus.Logger
}

// New connects to addr, or returns a disabled Cache if addr is empty.
func New(addr, password string, log *logrus.Logger) *Cache {
	if addr == "" {
		return &Cache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Cache{client: client, log: log}
}

func (c *Cache) enabled() bool { return c != nil && c.client != nil }

// Get unmarshals a cached value into dest, returning false on a miss or
// when caching is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache: corrupt value, treating as miss")
		return false
	}
	return true
}

// Set stores value under key with the given TTL. Errors are logged, not
// returned — a cache write failure must never fail the request it backs.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache: set failed")
	}
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if !c.enabled() {
		return
	}
	c.client.Del(ctx, key)
}

// InvalidateNAS drops the cached secret for one NAS IP. The admin API calls
// it after a NAS update whose body carries ip_address, with that address;
// other updates and deletes leave a cached entry in place until its TTL
// expires.
func (c *Cache) InvalidateNAS(ctx context.Context, ip string) {
	c.Delete(ctx, "nas:"+ip)
}

// Close releases the underlying Redis connection, if any.
func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}
