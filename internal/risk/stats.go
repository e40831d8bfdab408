package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// 통계 유틸리티
// =============================================================================

// Mean 평균 (빈 배열은 0)
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev 표본 표준편차 (ddof=1, 2개 미만은 0)
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Percentile 백분위수 계산 (numpy 기본값과 동일한 선형 보간)
// sorted: 오름차순 정렬, p: 0~100
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// =============================================================================
// VaR (Historical Simulation)
// =============================================================================

// HistoricalVaR returns the (1-confidence) percentile of daily returns and the
// mean of the tail at or below it
// ⭐ 부호 규약: 수익률 그대로 (손실 = 음수)
func HistoricalVaR(returns []float64, confidence float64) (varValue, cvar float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	// 수익률 정렬 (오름차순: 손실이 앞에)
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	varValue = Percentile(sorted, (1-confidence)*100)

	// CVaR (Expected Shortfall): VaR 이하 수익률의 평균
	var sum float64
	count := 0
	for _, r := range sorted {
		if r > varValue {
			break
		}
		sum += r
		count++
	}
	if count == 0 {
		return varValue, varValue
	}
	return varValue, sum / float64(count)
}

// MaxDrawdown returns min((cum − runmax) / runmax) over cumprod(1 + r)
// 시작 기준값 1.0은 포함하지 않음
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cum := 1.0
	runMax := math.Inf(-1)
	worst := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > runMax {
			runMax = cum
		}
		if runMax > 0 {
			worst = math.Min(worst, (cum-runMax)/runMax)
		}
	}
	return worst
}
