package quality

import (
	"math"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/risk"
)

// recentWindow is ~6 months of trading days
const recentWindow = 126

// ComputeMetrics derives QualityMetrics from fundamentals and daily history
func ComputeMetrics(f contracts.Fundamentals, h contracts.History) contracts.QualityMetrics {
	closes := h.Closes()
	returns := contracts.SimpleReturns(closes)

	m := contracts.QualityMetrics{
		MarketCap:  f.MarketCap,
		AvgVolume:  risk.Mean(h.Volumes()),
		DataPoints: h.Len(),
		Volatility: 1.0, // 수익률 없음 → 최대 변동성 취급
	}

	if len(returns) > 0 {
		dailyStd := risk.StdDev(returns)
		m.Volatility = dailyStd * math.Sqrt(risk.TradingDaysPerYear)
		if m.Volatility > 0 {
			m.SharpeRatio = risk.Mean(returns) * risk.TradingDaysPerYear / m.Volatility
		}
		m.PriceStability = math.Max(0, 1-dailyStd*10)
	}

	if len(closes) >= recentWindow {
		base := closes[len(closes)-recentWindow]
		if base > 0 {
			m.RecentReturn = (closes[len(closes)-1] - base) / base
		}
	}

	return m
}
