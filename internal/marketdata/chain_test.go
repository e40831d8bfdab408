package marketdata

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/pkg/config"
	"github.com/wonny/allocator/pkg/logger"
	"github.com/wonny/allocator/pkg/redis"
)

// partialProvider serves real history except for the symbols in down
type partialProvider struct {
	history contracts.History
	down    map[string]bool
}

func (p *partialProvider) History(ctx context.Context, symbol, period string) (contracts.History, error) {
	if p.down[symbol] {
		return contracts.History{}, errors.New("upstream timeout")
	}
	h := p.history
	h.Symbol = symbol
	return h, nil
}

func (p *partialProvider) Fundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	if p.down[symbol] {
		return contracts.Fundamentals{}, errors.New("upstream timeout")
	}
	return contracts.Fundamentals{MarketCap: 777e9, CurrentPrice: 777}, nil
}

func (p *partialProvider) Prices(ctx context.Context, symbols []string, period string) (*contracts.PriceSeries, error) {
	return fetchAligned(ctx, p.History, symbols, period)
}

func TestNewChain_Order(t *testing.T) {
	primary := &partialProvider{}

	chain := NewChain(primary, ChainOptions{Fallback: true, Attempts: 2}, logger.NewNop())
	f, ok := chain.(*Fallback)
	require.True(t, ok, "fallback must be outermost")
	cached, ok := f.primary.(*Cached)
	require.True(t, ok, "cache must sit between fallback and the real source")
	assert.Same(t, primary, cached.next)

	_, ok = NewChain(primary, ChainOptions{}, logger.NewNop()).(*Cached)
	assert.True(t, ok)
}

func TestNewChain_NeverMixesRealAndSynthetic(t *testing.T) {
	synthetic := NewSyntheticAt(anchor)
	primary := &partialProvider{
		history: syntheticHistory(t, "1y"),
		down:    map[string]bool{"MSFT": true},
	}
	chain := NewChain(primary, ChainOptions{
		Cache:     redis.NewCache(redis.Disabled(), "test"),
		Fallback:  true,
		Attempts:  2,
		Synthetic: synthetic,
	}, logger.NewNop())

	ps, err := chain.Prices(context.Background(), []string{"AAPL", "MSFT"}, "1y")
	require.NoError(t, err)

	want, err := synthetic.Prices(context.Background(), []string{"AAPL", "MSFT"}, "1y")
	require.NoError(t, err)

	// AAPL은 실데이터가 있어도 전체 종목이 합성으로 교체됨
	assert.Equal(t, mustColumn(t, want, "AAPL"), mustColumn(t, ps, "AAPL"))
	assert.Equal(t, mustColumn(t, want, "MSFT"), mustColumn(t, ps, "MSFT"))
	assert.NotEqual(t, primary.history.Closes()[0], mustColumn(t, ps, "AAPL")[0])
}

func TestNewChain_HealthyPrimary(t *testing.T) {
	primary := &partialProvider{history: syntheticHistory(t, "1y")}
	chain := NewChain(primary, ChainOptions{Fallback: true, Attempts: 1, Synthetic: NewSyntheticAt(anchor)}, logger.NewNop())

	ps, err := chain.Prices(context.Background(), []string{"AAPL", "MSFT"}, "1y")
	require.NoError(t, err)
	assert.Equal(t, primary.history.Closes(), mustColumn(t, ps, "AAPL"))

	f, err := chain.Fundamentals(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 777e9, f.MarketCap)
}

func TestNewChain_CachesRealDataOnly(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set")
	}

	ctx := context.Background()
	cfg := &config.Config{Redis: config.RedisConfig{
		Enabled: true,
		Host:    envOr("REDIS_HOST", "localhost"),
		Port:    envOr("REDIS_PORT", "6379"),
	}}
	client, err := redis.New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	cache := redis.NewCache(client, "chain-test-"+time.Now().Format("150405.000000"))
	primary := &partialProvider{
		history: syntheticHistory(t, "1y"),
		down:    map[string]bool{"MSFT": true},
	}
	chain := NewChain(primary, ChainOptions{
		Cache:     cache,
		Fallback:  true,
		Attempts:  1,
		Synthetic: NewSyntheticAt(anchor),
	}, logger.NewNop())

	keys := []string{
		redis.HistoryKey("AAPL", "1y"), redis.HistoryKey("MSFT", "1y"),
		redis.FundamentalsKey("AAPL"), redis.FundamentalsKey("MSFT"),
	}
	defer func() {
		for _, k := range keys {
			_ = cache.Delete(ctx, k)
		}
	}()

	_, err = chain.History(ctx, "AAPL", "1y")
	require.NoError(t, err)
	_, err = chain.History(ctx, "MSFT", "1y")
	require.NoError(t, err)
	_, err = chain.Fundamentals(ctx, "MSFT")
	require.NoError(t, err)

	var h contracts.History
	found, err := cache.Get(ctx, redis.HistoryKey("AAPL", "1y"), &h)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = cache.Get(ctx, redis.HistoryKey("MSFT", "1y"), &h)
	require.NoError(t, err)
	assert.False(t, found, "synthetic history must not be cached")

	var f contracts.Fundamentals
	found, err = cache.Get(ctx, redis.FundamentalsKey("MSFT"), &f)
	require.NoError(t, err)
	assert.False(t, found, "synthetic fundamentals must not be cached")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
