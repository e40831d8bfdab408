package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/internal/marketdata"
	"github.com/wonny/allocator/internal/quality"
	"github.com/wonny/allocator/pkg/config"
	"github.com/wonny/allocator/pkg/database"
	"github.com/wonny/allocator/pkg/httputil"
	"github.com/wonny/allocator/pkg/logger"
	"github.com/wonny/allocator/pkg/redis"
)

// fallbackDelay is the wait between real-data attempts
const fallbackDelay = time.Second

// deps holds the wired components shared by commands
type deps struct {
	cfg       *config.Config
	engine    *engineconfig.Config
	log       *logger.Logger
	db        *database.DB // DATABASE_URL 없으면 nil
	redis     *redis.Client
	provider  marketdata.Provider
	validator *quality.Validator
	service   *allocation.Service
}

// newDeps loads configuration and wires the engine
// ⭐ SSOT: 의존성 조립은 이 함수에서만
func newDeps(ctx context.Context) (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if engineConfigPath != "" {
		cfg.EngineConfigPath = engineConfigPath
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Engine parameters
	engine, err := engineconfig.LoadOrDefault(cfg.EngineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	d := &deps{cfg: cfg, engine: engine, log: log}

	// 4. Database (선택)
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		d.db = db
		log.Info("Connected to database")
	}

	// 5. Redis (선택)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		rdb = redis.Disabled()
	}
	d.redis = rdb

	// 6. Market data chain: Yahoo → Cache → Fallback(synthetic)
	d.provider = newProvider(cfg, rdb, log)

	// 7. Engine
	d.validator = quality.NewValidator(d.provider, engine.Quality, log)
	var store allocation.Store
	if d.db != nil {
		store = allocation.NewRepository(d.db.Pool)
	}
	d.service = allocation.NewService(engine, d.validator, d.provider, store, log)

	return d, nil
}

func newProvider(cfg *config.Config, rdb *redis.Client, log *logger.Logger) marketdata.Provider {
	if synthetic {
		log.Info("Using synthetic market data")
		return marketdata.NewSynthetic()
	}

	yahoo := marketdata.NewYahoo(httputil.New(cfg, log), cfg.MarketData, log)
	return marketdata.NewChain(yahoo, marketdata.ChainOptions{
		Cache:    redis.NewCache(rdb, "allocator"),
		CacheTTL: cfg.MarketData.CacheTTL,
		Fallback: cfg.MarketData.Fallback,
		Attempts: cfg.MarketData.MaxAttempts,
		Delay:    fallbackDelay,
	}, log)
}

// Close releases database and Redis connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}
