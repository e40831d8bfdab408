package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/internal/marketdata"
	"github.com/wonny/allocator/pkg/logger"
)

// WarmCacheJob prefetches watchlist market data through the caching provider
type WarmCacheJob struct {
	provider marketdata.Provider
	schedule string
	symbols  []string
	periods  []string
	logger   *logger.Logger
}

// NewWarmCacheJob creates a new cache warm-up job
func NewWarmCacheJob(provider marketdata.Provider, cfg *engineconfig.Config, log *logger.Logger) *WarmCacheJob {
	symbols := make([]string, len(cfg.Watchlist))
	for i, w := range cfg.Watchlist {
		symbols[i] = w.Symbol
	}

	// 검증 기간 + 최적화 기본 기간
	periods := []string{cfg.Quality.HistoryPeriod}
	if cfg.Quality.HistoryPeriod != marketdata.DefaultPeriod {
		periods = append(periods, marketdata.DefaultPeriod)
	}

	return &WarmCacheJob{
		provider: provider,
		schedule: cfg.Schedule.WarmCacheCron,
		symbols:  symbols,
		periods:  periods,
		logger:   log,
	}
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "market_data_warmup"
}

// Schedule returns the cron schedule
func (j *WarmCacheJob) Schedule() string {
	return j.schedule
}

// Run fetches history and fundamentals for every watchlist symbol
func (j *WarmCacheJob) Run(ctx context.Context) error {
	fetched, failed := 0, 0

	for _, symbol := range j.symbols {
		for _, period := range j.periods {
			if _, err := j.provider.History(ctx, symbol, period); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed++
				j.logger.WithError(err).WithFields(map[string]interface{}{
					"symbol": symbol,
					"period": period,
				}).Warn("History warm-up failed")
				continue
			}
			fetched++
		}

		if _, err := j.provider.Fundamentals(ctx, symbol); err != nil {
			failed++
			j.logger.WithError(err).WithField("symbol", symbol).Warn("Fundamentals warm-up failed")
			continue
		}
		fetched++
	}

	j.logger.WithFields(map[string]interface{}{
		"fetched": fetched,
		"failed":  failed,
	}).Info("Market data warm-up completed")

	if fetched == 0 && failed > 0 {
		return fmt.Errorf("market data warm-up: all %d fetches failed", failed)
	}
	return nil
}
