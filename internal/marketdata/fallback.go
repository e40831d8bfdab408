package marketdata

import (
	"context"
	"time"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/pkg/logger"
)

// Fallback tries the primary provider a few times and substitutes synthetic data
// 실데이터 실패 또는 MinRows 미만 → 합성 데이터 (경고 로그)
type Fallback struct {
	primary   Provider
	synthetic Provider
	attempts  int
	delay     time.Duration
	logger    *logger.Logger
}

// NewFallback creates a Fallback provider
func NewFallback(primary, synthetic Provider, attempts int, delay time.Duration, log *logger.Logger) *Fallback {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Fallback{
		primary:   primary,
		synthetic: synthetic,
		attempts:  attempts,
		delay:     delay,
		logger:    log,
	}
}

// History implements Provider
func (f *Fallback) History(ctx context.Context, symbol, period string) (contracts.History, error) {
	if _, err := NormalizePeriod(period); err != nil {
		return contracts.History{}, err
	}

	for attempt := 1; attempt <= f.attempts; attempt++ {
		h, err := f.primary.History(ctx, symbol, period)
		if err == nil && h.Len() >= MinRows {
			return h, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contracts.History{}, ctxErr
		}
		f.logAttempt(attempt, err, map[string]interface{}{"symbol": symbol, "rows": h.Len()})
		if err := f.wait(ctx, attempt); err != nil {
			return contracts.History{}, err
		}
	}

	f.logger.WithField("symbol", symbol).Warn("Using synthetic price history (real data unavailable)")
	return f.synthetic.History(ctx, symbol, period)
}

// Fundamentals implements Provider
func (f *Fallback) Fundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	fund, err := f.primary.Fundamentals(ctx, symbol)
	if err == nil {
		return fund, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contracts.Fundamentals{}, ctxErr
	}

	f.logger.WithError(err).WithField("symbol", symbol).Warn("Using synthetic fundamentals")
	return f.synthetic.Fundamentals(ctx, symbol)
}

// Prices implements Provider
// 전체 종목 단위로 대체 (일부 종목만 합성 데이터로 섞지 않음)
func (f *Fallback) Prices(ctx context.Context, symbols []string, period string) (*contracts.PriceSeries, error) {
	if _, err := NormalizePeriod(period); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= f.attempts; attempt++ {
		ps, err := f.primary.Prices(ctx, symbols, period)
		if err == nil && ps.Rows() >= MinRows {
			return ps, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		rows := 0
		if ps != nil {
			rows = ps.Rows()
		}
		f.logAttempt(attempt, err, map[string]interface{}{"symbols": symbols, "rows": rows})
		if err := f.wait(ctx, attempt); err != nil {
			return nil, err
		}
	}

	f.logger.WithField("symbols", symbols).Warn("Using synthetic prices (real data unavailable)")
	return f.synthetic.Prices(ctx, symbols, period)
}

func (f *Fallback) logAttempt(attempt int, err error, fields map[string]interface{}) {
	fields["attempt"] = attempt
	log := f.logger.WithFields(fields)
	if err != nil {
		log = log.WithError(err)
	}
	log.Warn("Real data fetch attempt failed")
}

// wait sleeps between attempts (마지막 시도 후에는 대기 없음)
func (f *Fallback) wait(ctx context.Context, attempt int) error {
	if attempt >= f.attempts || f.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return nil
	}
}
