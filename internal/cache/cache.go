// Package cache provides a bounded, TTL-expiring in-memory cache used for
// ledger-derived records (validated credentials, asset metadata). Entries are
// re-derivable from ledger state, so eviction is always safe.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultCounters sizes ristretto's admission sketch; roughly 10x the
	// expected number of live entries.
	defaultCounters = 1e5

	bufferItems = 64
)

// Cache is a bounded key/value cache with a per-cache TTL. A zero TTL means
// entries never expire (they can still be evicted by capacity pressure).
type Cache[T any] struct {
	cache *ristretto.Cache[string, T]
	ttl   time.Duration
	sfg   singleflight.Group
}

// New builds a cache holding at most maxEntries values, each expiring after
// ttl.
func New[T any](maxEntries int64, ttl time.Duration) (*Cache[T], error) {
	rc, err := ristretto.NewCache[string, T](&ristretto.Config[string, T]{
		NumCounters: defaultCounters,
		MaxCost:     maxEntries,
		BufferItems: bufferItems,
		Cost:        func(T) int64 { return 1 },
	})
	if err != nil {
		return nil, err
	}
	return &Cache[T]{cache: rc, ttl: ttl}, nil
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.cache.Get(key)
}

func (c *Cache[T]) Add(key string, value T) {
	c.cache.SetWithTTL(key, value, 1, c.ttl)
	c.cache.Wait()
}

func (c *Cache[T]) Delete(key string) {
	c.cache.Del(key)
	c.cache.Wait()
}

func (c *Cache[T]) Clear() {
	c.cache.Clear()
	c.cache.Wait()
}

// GetOrLoad returns the cached value for key, or runs loader to produce it.
// Concurrent loads for the same key are collapsed via singleflight. The bool
// reports whether the value came from the cache.
func (c *Cache[T]) GetOrLoad(key string, loader func() (T, error)) (T, bool, error) {
	var zero T

	if value, found := c.Get(key); found {
		return value, true, nil
	}

	res, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		newValue, loadErr := loader()
		if loadErr != nil {
			return nil, loadErr
		}
		c.Add(key, newValue)
		return newValue, nil
	})
	if err != nil {
		return zero, false, err
	}
	return res.(T), false, nil
}
