package engineconfig

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var knownMethods = map[string]bool{"max_sharpe": true, "min_variance": true}

var knownPeriods = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true,
	"5y": true, "10y": true, "ytd": true, "max": true,
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Quality ===
	q := cfg.Quality
	if q.MinMarketCap <= 0 {
		return ValidationError{"quality.min_market_cap", "must be > 0"}
	}
	if q.MinAvgVolume <= 0 {
		return ValidationError{"quality.min_avg_volume", "must be > 0"}
	}
	if q.MaxVolatility <= 0 {
		return ValidationError{"quality.max_volatility", "must be > 0"}
	}
	if q.MinDataPoints < 2 {
		return ValidationError{"quality.min_data_points", "must be >= 2"}
	}
	if q.MinChecksPassed < 1 || q.MinChecksPassed > 5 {
		return ValidationError{"quality.min_checks_passed", "must be in [1, 5]"}
	}
	if q.PointsPerCheck < 0 || q.MaxScore <= 0 {
		return ValidationError{"quality.points_per_check", "points must be >= 0 and max_score > 0"}
	}
	if q.MinValid < 1 {
		return ValidationError{"quality.min_valid", "must be >= 1"}
	}
	if !knownPeriods[q.HistoryPeriod] {
		return ValidationError{"quality.history_period", fmt.Sprintf("unsupported period %q", q.HistoryPeriod)}
	}
	if err := validateBands("quality.bands.market_cap", q.Bands.MarketCap, true); err != nil {
		return err
	}
	if err := validateBands("quality.bands.sharpe", q.Bands.Sharpe, true); err != nil {
		return err
	}
	if err := validateBands("quality.bands.volume", q.Bands.Volume, true); err != nil {
		return err
	}
	if err := validateBands("quality.bands.volatility", q.Bands.Volatility, false); err != nil {
		return err
	}

	// === Optimizer ===
	o := cfg.Optimizer
	if !knownMethods[o.DefaultMethod] {
		return ValidationError{"optimizer.default_method", "must be one of max_sharpe, min_variance"}
	}
	if o.MinAllocation < 0 || o.MinAllocation >= o.MaxAllocation {
		return ValidationError{"optimizer.min_allocation", "must be in [0, max_allocation)"}
	}
	if o.MaxAllocation <= 0 || o.MaxAllocation > 1 {
		return ValidationError{"optimizer.max_allocation", "must be in (0, 1]"}
	}
	if o.MinPhase1Weight < 0 || o.MinPhase1Weight >= 1 {
		return ValidationError{"optimizer.min_phase1_weight", "must be in [0, 1)"}
	}
	if o.MinReturnRows < 2 {
		return ValidationError{"optimizer.min_return_rows", "must be >= 2"}
	}
	if o.MaxIterations <= 0 {
		return ValidationError{"optimizer.max_iterations", "must be > 0"}
	}
	if o.Tolerance <= 0 {
		return ValidationError{"optimizer.tolerance", "must be > 0"}
	}

	// === Risk ===
	if cfg.Risk.MaxVaR95 > 0 {
		return ValidationError{"risk.max_var_95", "must be <= 0 (loss is negative)"}
	}
	if cfg.Risk.MaxDrawdown > 0 || cfg.Risk.MaxDrawdown < -1 {
		return ValidationError{"risk.max_drawdown", "must be in [-1, 0]"}
	}

	// === Schedule ===
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for field, expr := range map[string]string{
		"schedule.revalidate_cron": cfg.Schedule.RevalidateCron,
		"schedule.warm_cache_cron": cfg.Schedule.WarmCacheCron,
	} {
		if expr == "" {
			continue
		}
		if _, err := parser.Parse(expr); err != nil {
			return ValidationError{field, err.Error()}
		}
	}
	if cfg.Schedule.MaxCount < 1 {
		return ValidationError{"schedule.max_count", "must be >= 1"}
	}

	// === Watchlist ===
	seen := make(map[string]bool, len(cfg.Watchlist))
	for i, w := range cfg.Watchlist {
		sym := strings.TrimSpace(w.Symbol)
		if sym == "" {
			return ValidationError{fmt.Sprintf("watchlist[%d].symbol", i), "required"}
		}
		if seen[strings.ToUpper(sym)] {
			return ValidationError{fmt.Sprintf("watchlist[%d].symbol", i), "duplicate " + sym}
		}
		seen[strings.ToUpper(sym)] = true
	}

	return nil
}

// validateBands requires non-empty tiers ordered so the first match is the best
// desc=true: 임계값 내림차순 (값 > 임계), false: 오름차순 (값 < 임계)
func validateBands(field string, bands []Band, desc bool) error {
	if len(bands) == 0 {
		return ValidationError{field, "at least one band required"}
	}
	for i := 1; i < len(bands); i++ {
		prev, cur := bands[i-1].Threshold, bands[i].Threshold
		if desc && cur >= prev {
			return ValidationError{field, "thresholds must be strictly descending"}
		}
		if !desc && cur <= prev {
			return ValidationError{field, "thresholds must be strictly ascending"}
		}
	}
	for _, b := range bands {
		if b.Points < 0 {
			return ValidationError{field, "points must be >= 0"}
		}
	}
	return nil
}
