package marketdata

import (
	"context"
	"time"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/pkg/logger"
	"github.com/wonny/allocator/pkg/redis"
)

// Cached wraps a Provider with a Redis JSON cache
// Redis 비활성 시 그대로 통과
type Cached struct {
	next         Provider
	cache        *redis.Cache
	historyTTL   time.Duration
	fundamentTTL time.Duration
	logger       *logger.Logger
}

// NewCached creates a caching provider
func NewCached(next Provider, cache *redis.Cache, historyTTL time.Duration, log *logger.Logger) *Cached {
	if historyTTL <= 0 {
		historyTTL = redis.TTLLong
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Cached{
		next:         next,
		cache:        cache,
		historyTTL:   historyTTL,
		fundamentTTL: redis.TTLMedium,
		logger:       log,
	}
}

// History implements Provider
func (c *Cached) History(ctx context.Context, symbol, period string) (contracts.History, error) {
	p, err := NormalizePeriod(period)
	if err != nil {
		return contracts.History{}, err
	}
	key := redis.HistoryKey(symbol, p)

	var cached contracts.History
	if found, err := c.cache.Get(ctx, key, &cached); err != nil {
		c.evict(ctx, key, err)
	} else if found {
		return cached, nil
	}

	h, err := c.next.History(ctx, symbol, p)
	if err != nil {
		return h, err
	}

	if err := c.cache.Set(ctx, key, h, c.historyTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return h, nil
}

// Fundamentals implements Provider
func (c *Cached) Fundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	key := redis.FundamentalsKey(symbol)

	var cached contracts.Fundamentals
	if found, err := c.cache.Get(ctx, key, &cached); err != nil {
		c.evict(ctx, key, err)
	} else if found {
		return cached, nil
	}

	f, err := c.next.Fundamentals(ctx, symbol)
	if err != nil {
		return f, err
	}

	if err := c.cache.Set(ctx, key, f, c.fundamentTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return f, nil
}

// Prices implements Provider
func (c *Cached) Prices(ctx context.Context, symbols []string, period string) (*contracts.PriceSeries, error) {
	return fetchAligned(ctx, c.History, symbols, period)
}

// evict drops an unreadable entry so the next read refetches
func (c *Cached) evict(ctx context.Context, key string, readErr error) {
	log := c.logger.WithError(readErr).WithField("key", key)
	log.Warn("Cache read failed")
	if err := c.cache.Delete(ctx, key); err != nil {
		log.WithField("delete_error", err.Error()).Warn("Cache evict failed")
	}
}
