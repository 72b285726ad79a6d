package caching

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTLCache is a size-capped in-process cache whose entries expire a fixed
// TTL after they are written. Reads do not extend an entry's lifetime. When
// full, the least recently used entry is evicted.
type TTLCache[K comparable, V any] struct {
	cache *ttlcache.Cache[K, V]
}

func NewTTLCache[K comparable, V any](ttl time.Duration, maxSize int) *TTLCache[K, V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &TTLCache[K, V]{
		cache: ttlcache.New[K, V](
			ttlcache.WithTTL[K, V](ttl),
			ttlcache.WithCapacity[K, V](uint64(maxSize)),
			ttlcache.WithDisableTouchOnHit[K, V](),
		),
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	item := c.cache.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.cache.Set(key, value, ttlcache.DefaultTTL)
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.cache.Delete(key)
}

func (c *TTLCache[K, V]) Len() int {
	return c.cache.Len()
}

// Purge drops every expired entry and returns how many live entries remain.
func (c *TTLCache[K, V]) Purge() int {
	c.cache.DeleteExpired()
	return c.cache.Len()
}
