package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache fronts the tenant Provider so the middleware does not hit the
// database on every request.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

type cacheItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// inMemoryCache is a TTL map with a background janitor.
type inMemoryCache struct {
	mu     sync.RWMutex
	items  map[string]cacheItem
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// NewInMemoryCache creates a per-process tenant cache with periodic cleanup
// of expired entries.
func NewInMemoryCache() Cache {
	c := &inMemoryCache{
		items: make(map[string]cacheItem),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *inMemoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.tenant, true
}

func (c *inMemoryCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = cacheItem{tenant: tenant, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *inMemoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *inMemoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *inMemoryCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// noOpCache disables caching. Useful in tests.
type noOpCache struct{}

// NewNoOpCache creates a cache that never stores anything.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(ctx context.Context, key string) (*Tenant, bool) { return nil, false }

func (noOpCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {}

func (noOpCache) Delete(ctx context.Context, key string) {}

func (noOpCache) Close() error { return nil }
