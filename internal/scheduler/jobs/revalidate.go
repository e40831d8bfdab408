package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/pkg/logger"
)

// RevalidateJob re-screens the configured watchlist and persists the verdicts
// ⭐ SSOT: 관심종목 재검증 스케줄은 이 Job에서만
type RevalidateJob struct {
	service  *allocation.Service
	schedule engineconfig.Schedule
	stocks   []contracts.CandidateStock
	logger   *logger.Logger
}

// NewRevalidateJob creates a new revalidation job
func NewRevalidateJob(service *allocation.Service, cfg *engineconfig.Config, log *logger.Logger) *RevalidateJob {
	stocks := make([]contracts.CandidateStock, len(cfg.Watchlist))
	for i, w := range cfg.Watchlist {
		stocks[i] = contracts.CandidateStock{Symbol: w.Symbol, Name: w.Name, Industry: w.Industry}
	}
	return &RevalidateJob{
		service:  service,
		schedule: cfg.Schedule,
		stocks:   stocks,
		logger:   log,
	}
}

// Name returns the job name
func (j *RevalidateJob) Name() string {
	return "watchlist_revalidation"
}

// Schedule returns the cron schedule
func (j *RevalidateJob) Schedule() string {
	return j.schedule.RevalidateCron
}

// Run executes the revalidation
func (j *RevalidateJob) Run(ctx context.Context) error {
	j.logger.WithField("stocks", len(j.stocks)).Info("Starting scheduled watchlist revalidation")

	selected, err := j.service.Recommend(ctx, j.stocks, j.schedule.MaxCount)
	if errors.Is(err, allocation.ErrNoValidCandidates) {
		// 판정 결과는 이미 저장됨
		j.logger.Warn("No watchlist stocks passed validation")
		return nil
	}
	if err != nil {
		return fmt.Errorf("revalidate watchlist: %w", err)
	}

	symbols := make([]string, len(selected))
	for i, s := range selected {
		symbols[i] = s.Symbol
	}
	j.logger.WithFields(map[string]interface{}{
		"valid":   len(selected),
		"symbols": symbols,
	}).Info("Watchlist revalidated")

	return nil
}
