// Package marketdata fetches daily price history and fundamentals.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/allocator/internal/contracts"
)

// DefaultPeriod is used when the caller gives no period
const DefaultPeriod = "2y"

// MinRows is the smallest usable aligned history
const MinRows = 20

var (
	ErrUnsupportedPeriod = errors.New("unsupported data period")
	ErrNoData            = errors.New("no price data returned")
	ErrNoFundamentals    = errors.New("no fundamentals found")
)

// Provider supplies market data
// ⭐ SSOT: 외부 시세 조회는 이 인터페이스를 통해서만
type Provider interface {
	// History returns daily bars for symbol over period, oldest first
	History(ctx context.Context, symbol, period string) (contracts.History, error)
	// Fundamentals returns market cap, average volume and last price
	Fundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error)
	// Prices returns aligned closing prices for symbols over period
	Prices(ctx context.Context, symbols []string, period string) (*contracts.PriceSeries, error)
}

// periodDays maps a Yahoo range to calendar days
var periodDays = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
	"10y": 3650,
	"ytd": 0, // 기준일에 따라 계산
	"max": 3650,
}

// NormalizePeriod validates period, returning DefaultPeriod for ""
func NormalizePeriod(period string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "" {
		return DefaultPeriod, nil
	}
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, period)
	}
	return p, nil
}

// PeriodStart returns the first calendar day covered by period ending at now
func PeriodStart(period string, now time.Time) (time.Time, error) {
	p, err := NormalizePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	if p == "ytd" {
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	}
	return now.AddDate(0, 0, -periodDays[p]), nil
}

// fetchAligned fetches every symbol through history and joins them on common dates
func fetchAligned(ctx context.Context, history func(context.Context, string, string) (contracts.History, error), symbols []string, period string) (*contracts.PriceSeries, error) {
	if len(symbols) == 0 {
		return nil, contracts.ErrEmptySeries
	}

	histories := make([]contracts.History, 0, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := history(ctx, sym, period)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", sym, err)
		}
		histories = append(histories, h)
	}

	return contracts.AlignPrices(histories)
}
