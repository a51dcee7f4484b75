// Package catalog serves the scheduling backend's service and provider
// lists through a short-lived Redis cache. Slot availabilities are never
// cached: the remote scheduler is the sole source of truth for those.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

const (
	servicesKey  = "catalog:services"
	providersKey = "catalog:providers"
)

// Source is the slice of the scheduling backend the catalog reads.
type Source interface {
	GetServices(ctx context.Context) ([]scheduling.Service, error)
	GetProviders(ctx context.Context) ([]scheduling.Provider, error)
}

// Cache is a read-through cache over the catalog source. Redis being down
// degrades to a plain passthrough; it never fails a request on its own.
type Cache struct {
	source Source
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache constructs a catalog cache. redis may be nil to disable caching.
func NewCache(source Source, client *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if source == nil {
		panic("catalog: source required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{source: source, redis: client, ttl: ttl, logger: logger}
}

// Services returns the service catalog, cached.
func (c *Cache) Services(ctx context.Context) ([]scheduling.Service, error) {
	var services []scheduling.Service
	if c.loadCached(ctx, servicesKey, &services) {
		return services, nil
	}
	services, err := c.source.GetServices(ctx)
	if err != nil {
		return nil, err
	}
	c.storeCached(ctx, servicesKey, services)
	return services, nil
}

// Providers returns the provider list, cached.
func (c *Cache) Providers(ctx context.Context) ([]scheduling.Provider, error) {
	var providers []scheduling.Provider
	if c.loadCached(ctx, providersKey, &providers) {
		return providers, nil
	}
	providers, err := c.source.GetProviders(ctx)
	if err != nil {
		return nil, err
	}
	c.storeCached(ctx, providersKey, providers)
	return providers, nil
}

func (c *Cache) loadCached(ctx context.Context, key string, out interface{}) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("catalog cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) storeCached(ctx context.Context, key string, value interface{}) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}
