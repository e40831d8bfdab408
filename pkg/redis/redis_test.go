package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocator/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	// Redis 비활성 시 모든 연산은 no-op
	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))
	assert.False(t, cache.Enabled())
}

func TestCache_NilIsDisabled(t *testing.T) {
	var cache *Cache
	assert.False(t, cache.Enabled())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "history:AAPL:2y", HistoryKey("aapl", "2y"))
	assert.Equal(t, "fundamentals:MSFT", FundamentalsKey("msft"))
	assert.Equal(t, "allocator:cache:history:AAPL:1y", NewCache(Disabled(), "allocator").fullKey(HistoryKey("AAPL", "1y")))
}

func TestNewClient_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, cfg)
	assert.Error(t, err)
}
