package quality

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/internal/marketdata"
	"github.com/wonny/allocator/pkg/logger"
)

// DefaultMaxCount is the batch limit when the caller gives none
const DefaultMaxCount = 20

// 실패 사유 문자열 (저장/응답에 그대로 노출)
const (
	ReasonInsufficientData = "insufficient historical data"
	reasonFetchError       = "data fetch error: "
)

// Validator scores candidates for institutional-grade quality
// ⭐ SSOT: 종목 품질 판정은 여기서만
// 순차 처리 (내부 동시성 없음), 종목별 실패는 결과에 기록하고 계속 진행
type Validator struct {
	provider marketdata.Provider
	cfg      engineconfig.Quality
	logger   *logger.Logger
}

// NewValidator creates a Validator
func NewValidator(provider marketdata.Provider, cfg engineconfig.Quality, log *logger.Logger) *Validator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Validator{
		provider: provider,
		cfg:      cfg,
		logger:   log,
	}
}

// Validate returns the valid candidates ranked by score, at most maxCount
// 유효 종목이 MinValid 미만이면 빈 결과
func (v *Validator) Validate(ctx context.Context, candidates []contracts.CandidateStock, maxCount int) []contracts.ValidatedStock {
	return Select(v.ValidateAll(ctx, candidates), maxCount, v.cfg.MinValid)
}

// Progress receives each verdict as soon as it is computed (done는 1부터)
type Progress func(done, total int, stock contracts.ValidatedStock)

// ValidateAll returns every verdict sorted by score (desc, stable)
func (v *Validator) ValidateAll(ctx context.Context, candidates []contracts.CandidateStock) []contracts.ValidatedStock {
	return v.ValidateEach(ctx, candidates, nil)
}

// ValidateEach is ValidateAll reporting each verdict in input order
// ctx 취소 시 남은 후보는 건너뜀
func (v *Validator) ValidateEach(ctx context.Context, candidates []contracts.CandidateStock, progress Progress) []contracts.ValidatedStock {
	v.logger.WithField("candidates", len(candidates)).Info("Stock validation started")

	results := make([]contracts.ValidatedStock, 0, len(candidates))
	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		result := v.Evaluate(ctx, c)
		stock := contracts.ValidatedStock{CandidateStock: c, ValidationResult: result}
		results = append(results, stock)
		if progress != nil {
			progress(i+1, len(candidates), stock)
		}

		log := v.logger.WithFields(map[string]interface{}{
			"symbol": c.Symbol,
			"score":  result.QualityScore,
			"valid":  result.IsValid,
		})
		if result.IsValid {
			log.Debug("Stock passed validation")
		} else {
			log.WithField("reason", result.FailureReason).Debug("Stock failed validation")
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].QualityScore > results[j].QualityScore
	})

	passed := 0
	for _, r := range results {
		if r.IsValid {
			passed++
		}
	}
	v.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"passed":     passed,
	}).Info("Stock validation complete")

	return results
}

// Evaluate scores one candidate
func (v *Validator) Evaluate(ctx context.Context, c contracts.CandidateStock) contracts.ValidationResult {
	history, err := v.provider.History(ctx, c.Symbol, v.cfg.HistoryPeriod)
	if err != nil {
		return fetchError(err)
	}

	if history.Len() < v.cfg.MinDataPoints {
		return contracts.ValidationResult{
			IsValid:       false,
			QualityScore:  0,
			FailureReason: ReasonInsufficientData,
		}
	}

	// 조회 실패 또는 시가총액 누락 시 후보에 담긴 값을 사용
	fundamentals, err := v.provider.Fundamentals(ctx, c.Symbol)
	switch {
	case err != nil && c.Fundamentals.MarketCap <= 0:
		return fetchError(err)
	case err != nil:
		fundamentals = c.Fundamentals
	case fundamentals.MarketCap <= 0:
		fundamentals.MarketCap = c.Fundamentals.MarketCap
	}

	metrics := ComputeMetrics(fundamentals, history)
	checks := v.Check(metrics)

	result := contracts.ValidationResult{
		IsValid:      checks.Passed() >= v.cfg.MinChecksPassed,
		QualityScore: v.Score(metrics, checks),
		Metrics:      &metrics,
		Checks:       &checks,
	}
	if !result.IsValid {
		result.FailureReason = contracts.FailureSummary(checks.Failed())
	}
	return result
}

// Check evaluates the five quality checks
func (v *Validator) Check(m contracts.QualityMetrics) contracts.ValidationChecks {
	return contracts.ValidationChecks{
		MarketCap:   m.MarketCap >= v.cfg.MinMarketCap,
		Volume:      m.AvgVolume >= v.cfg.MinAvgVolume,
		Volatility:  m.Volatility <= v.cfg.MaxVolatility,
		SharpeRatio: m.SharpeRatio >= v.cfg.MinSharpe,
		DataQuality: m.DataPoints >= v.cfg.MinDataPoints,
	}
}

// Score is passed×PointsPerCheck plus band bonuses, capped at MaxScore
func (v *Validator) Score(m contracts.QualityMetrics, checks contracts.ValidationChecks) float64 {
	score := float64(checks.Passed()) * v.cfg.PointsPerCheck

	score += bandAbove(m.MarketCap, v.cfg.Bands.MarketCap)
	score += bandAbove(m.SharpeRatio, v.cfg.Bands.Sharpe)
	score += bandAbove(m.AvgVolume, v.cfg.Bands.Volume)
	score += bandBelow(m.Volatility, v.cfg.Bands.Volatility)

	if score > v.cfg.MaxScore {
		score = v.cfg.MaxScore
	}
	return score
}

// Select keeps valid results (already ranked), truncated to maxCount
func Select(results []contracts.ValidatedStock, maxCount, minValid int) []contracts.ValidatedStock {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	valid := make([]contracts.ValidatedStock, 0, len(results))
	for _, r := range results {
		if r.IsValid {
			valid = append(valid, r)
		}
	}
	if len(valid) > maxCount {
		valid = valid[:maxCount]
	}
	if len(valid) < minValid {
		return []contracts.ValidatedStock{}
	}
	return valid
}

// bandAbove returns the points of the first band with value > threshold
func bandAbove(value float64, bands []engineconfig.Band) float64 {
	for _, b := range bands {
		if value > b.Threshold {
			return b.Points
		}
	}
	return 0
}

// bandBelow returns the points of the first band with value < threshold
func bandBelow(value float64, bands []engineconfig.Band) float64 {
	for _, b := range bands {
		if value < b.Threshold {
			return b.Points
		}
	}
	return 0
}

func fetchError(err error) contracts.ValidationResult {
	return contracts.ValidationResult{
		IsValid:       false,
		QualityScore:  0,
		FailureReason: fmt.Sprintf("%s%v", reasonFetchError, err),
	}
}
