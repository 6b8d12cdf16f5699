package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrank/internal/db"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
)

// DefaultKeyPrefix namespaces cached profiles in the key-value store.
const DefaultKeyPrefix = "newsrank:profile:"

// provider is the wrapped profile source.
type provider interface {
	FetchProfile(ctx context.Context, clientGUID string) (client.Profile, error)
}

// store is the consumer interface for the profile cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedProvider caches client profiles in a key-value store with a TTL.
// Entries expire server-side, so a profile is never served past its TTL.
type CachedProvider struct {
	inner      provider
	store      store
	ttl        time.Duration
	keyPrefix  string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. A non-positive ttl disables caching.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner provider,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		keyPrefix:  DefaultKeyPrefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// FetchProfile returns a cached profile or loads it from the inner provider.
// Lookup failures are never cached.
func (c *CachedProvider) FetchProfile(ctx context.Context, clientGUID string) (client.Profile, error) {
	if c.ttl <= 0 {
		return c.inner.FetchProfile(ctx, clientGUID)
	}

	key := c.keyPrefix + clientGUID
	if p, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return p, nil
	}
	c.incCache("miss")

	p, err := c.inner.FetchProfile(ctx, clientGUID)
	if err != nil {
		return client.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	c.putToCache(ctx, key, p)
	return p, nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedProvider) getFromCache(ctx context.Context, key string) (client.Profile, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached profile", zap.String("key", key), zap.Error(err))
		}
		return client.Profile{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Failed to parse cached profile", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return client.Profile{}, false
	}
	p, err := client.New(entry.fields())
	if err != nil {
		c.logger.Warn("Invalid cached profile", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return client.Profile{}, false
	}
	return p, true
}

func (c *CachedProvider) putToCache(ctx context.Context, key string, p client.Profile) {
	data, err := json.Marshal(newCacheEntry(p))
	if err != nil {
		c.logger.Warn("Failed to encode profile", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache profile", zap.String("key", key), zap.Error(err))
	}
}

// evict drops an unreadable entry so the next miss repopulates it.
func (c *CachedProvider) evict(ctx context.Context, key string) {
	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("Failed to evict cached profile", zap.String("key", key), zap.Error(err))
	}
}
