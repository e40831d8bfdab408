package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/wonny/allocator/internal/contracts"
)

// 합성 시계열 파라미터
const (
	syntheticDrift     = 0.0005
	syntheticVol       = 0.02
	syntheticTrendLow  = -0.1
	syntheticTrendHigh = 0.1
	syntheticFloor     = 1.0
	syntheticShares    = 1e9 // 시가총액 = 종가 × 주식수
)

// basePrices are the starting prices of well-known symbols
var basePrices = map[string]float64{
	"AAPL": 150, "MSFT": 300, "GOOGL": 100, "AMZN": 120, "TSLA": 200,
	"META": 250, "NVDA": 400, "BRK-B": 300, "JNJ": 160, "V": 220,
	"PG": 140, "HD": 300, "MA": 350, "UNH": 450, "DIS": 100,
	"ADBE": 400, "NFLX": 350, "XOM": 100, "BAC": 30, "ABBV": 140,
}

// Synthetic generates reproducible random-walk prices over business days
// 실데이터 조회 실패 시 데모용 대체 데이터
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic creates a generator anchored at the current date
func NewSynthetic() *Synthetic {
	return &Synthetic{now: time.Now}
}

// NewSyntheticAt creates a generator anchored at a fixed date
func NewSyntheticAt(now time.Time) *Synthetic {
	return &Synthetic{now: func() time.Time { return now }}
}

// History implements Provider
func (s *Synthetic) History(ctx context.Context, symbol, period string) (contracts.History, error) {
	if err := ctx.Err(); err != nil {
		return contracts.History{}, err
	}

	end := s.now().UTC()
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	start, err := PeriodStart(period, end)
	if err != nil {
		return contracts.History{}, err
	}

	dates := businessDays(start, end)
	n := len(dates)
	if n == 0 {
		return contracts.History{}, ErrNoData
	}

	sym := strings.ToUpper(symbol)
	rng := rand.New(rand.NewSource(seed(sym)))

	base, ok := basePrices[sym]
	if !ok {
		base = 50 + rng.Float64()*250
	}

	bars := make([]contracts.Bar, n)
	price := base
	for i := 0; i < n; i++ {
		r := syntheticDrift + syntheticVol*rng.NormFloat64()
		if i > 0 {
			r += trend(i, n) / float64(n)
			price = math.Max(price*(1+r), syntheticFloor)
		}
		bars[i] = contracts.Bar{
			Date:   dates[i],
			Close:  price,
			Volume: math.Round(2e6 + rng.Float64()*10e6),
		}
	}

	return contracts.History{Symbol: sym, Bars: bars}, nil
}

// Fundamentals implements Provider
func (s *Synthetic) Fundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	h, err := s.History(ctx, symbol, "1y")
	if err != nil {
		return contracts.Fundamentals{}, err
	}

	last := h.Bars[len(h.Bars)-1].Close
	var volume float64
	for _, b := range h.Bars {
		volume += b.Volume
	}

	return contracts.Fundamentals{
		MarketCap:    last * syntheticShares,
		AvgVolume:    volume / float64(len(h.Bars)),
		CurrentPrice: last,
	}, nil
}

// Prices implements Provider
func (s *Synthetic) Prices(ctx context.Context, symbols []string, period string) (*contracts.PriceSeries, error) {
	return fetchAligned(ctx, s.History, symbols, period)
}

// trend is linspace(low, high, n)[i]
func trend(i, n int) float64 {
	if n < 2 {
		return syntheticTrendLow
	}
	return syntheticTrendLow + (syntheticTrendHigh-syntheticTrendLow)*float64(i)/float64(n-1)
}

// seed derives a stable PRNG seed from symbol
func seed(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return int64(h.Sum64() & math.MaxInt64)
}

// businessDays lists Mon-Fri dates in [start, end]
func businessDays(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
	}
	return out
}
