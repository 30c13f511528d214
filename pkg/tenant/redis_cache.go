package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache shares tenant lookups across processes. Entries are stored as
// JSON under a configurable key prefix; Redis handles expiry.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed tenant cache. The client lifecycle is
// owned by the caller; Close here is a no-op on the connection.
func NewRedisCache(client *redis.Client, prefix string) Cache {
	if prefix == "" {
		prefix = "tenant:"
	}
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		// Corrupt entry: drop it so the provider repopulates.
		c.client.Del(ctx, c.prefix+key)
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	if tenant == nil {
		return
	}
	data, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, data, ttl)
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	c.client.Del(ctx, c.prefix+key)
}

func (c *redisCache) Close() error {
	return nil
}
