package engineconfig

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := "../../config/engine.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	// 저장소의 YAML은 기본값과 동일해야 함
	assert.Equal(t, Default(), cfg)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	defHash, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, defHash, hash)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestParse_PartialOverridesKeepDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
optimizer:
  default_method: min_variance
  min_allocation: 0.05
  max_allocation: 0.5
  min_expected_return: 0.02
  min_phase1_weight: 0.005
  min_return_rows: 20
  max_iterations: 1000
  tolerance: 1.0e-9
`))
	require.NoError(t, err)

	assert.Equal(t, "min_variance", cfg.Optimizer.DefaultMethod)
	assert.Equal(t, 0.02, cfg.Optimizer.MinExpectedReturn)
	assert.Equal(t, Default().Quality, cfg.Quality)
	assert.Len(t, cfg.Watchlist, len(Default().Watchlist))
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte(`
quality:
  min_market_capp: 1
`))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty profile", func(c *Config) { c.Meta.ProfileID = "" }, "meta.profile_id"},
		{"checks out of range", func(c *Config) { c.Quality.MinChecksPassed = 6 }, "quality.min_checks_passed"},
		{"unknown period", func(c *Config) { c.Quality.HistoryPeriod = "3y" }, "quality.history_period"},
		{"bands not descending", func(c *Config) {
			c.Quality.Bands.Sharpe = []Band{{1.0, 5}, {2.0, 10}}
		}, "quality.bands.sharpe"},
		{"volatility bands not ascending", func(c *Config) {
			c.Quality.Bands.Volatility = []Band{{0.30, 5}, {0.20, 10}}
		}, "quality.bands.volatility"},
		{"unknown method", func(c *Config) { c.Optimizer.DefaultMethod = "risk_parity" }, "optimizer.default_method"},
		{"min above max", func(c *Config) { c.Optimizer.MinAllocation = 0.6 }, "optimizer.min_allocation"},
		{"positive var limit", func(c *Config) { c.Risk.MaxVaR95 = 0.02 }, "risk.max_var_95"},
		{"bad cron", func(c *Config) { c.Schedule.RevalidateCron = "every day" }, "schedule.revalidate_cron"},
		{"bad warm cron", func(c *Config) { c.Schedule.WarmCacheCron = "0 7 * * *" }, "schedule.warm_cache_cron"},
		{"duplicate watch symbol", func(c *Config) {
			c.Watchlist = append(c.Watchlist, WatchStock{Symbol: "aapl"})
		}, "watchlist[8].symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestHash_ChangesWithConfig(t *testing.T) {
	a := Default()
	b := Default()
	b.Quality.MinSharpe = 0.6

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault("does-not-exist.yaml")
	assert.Error(t, err)
}
