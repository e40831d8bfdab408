package contracts

import "strings"

// CandidateStock is a stock proposed for validation
// ⭐ SSOT: 추천 소스 → Validator 입력 계약
type CandidateStock struct {
	Symbol       string       `json:"symbol"`
	Name         string       `json:"name"`
	Industry     string       `json:"industry"`
	Description  string       `json:"description"`
	Fundamentals Fundamentals `json:"fundamentals"`
}

// Fundamentals holds point-in-time fundamentals for a stock
type Fundamentals struct {
	MarketCap    float64 `json:"market_cap"`
	AvgVolume    float64 `json:"avg_volume"`
	CurrentPrice float64 `json:"current_price"`
}

// QualityMetrics are derived per stock from fundamentals and 1y history
type QualityMetrics struct {
	MarketCap      float64 `json:"market_cap"`
	AvgVolume      float64 `json:"avg_volume"`      // 1년 평균 일 거래량
	Volatility     float64 `json:"volatility"`      // 연율화 변동성
	SharpeRatio    float64 `json:"sharpe_ratio"`    // 연율화 수익률 / 연율화 변동성
	RecentReturn   float64 `json:"recent_return"`   // 최근 ~6개월 수익률
	PriceStability float64 `json:"price_stability"` // 1 - 10*일간 표준편차 (하한 0)
	DataPoints     int     `json:"data_points"`
}

// ValidationChecks holds the outcome of each quality check
type ValidationChecks struct {
	MarketCap   bool `json:"market_cap"`
	Volume      bool `json:"volume"`
	Volatility  bool `json:"volatility"`
	SharpeRatio bool `json:"sharpe_ratio"`
	DataQuality bool `json:"data_quality"`
}

// Passed returns the number of checks that passed
func (c ValidationChecks) Passed() int {
	n := 0
	for _, ok := range []bool{c.MarketCap, c.Volume, c.Volatility, c.SharpeRatio, c.DataQuality} {
		if ok {
			n++
		}
	}
	return n
}

// Failed returns the names of the failed checks in evaluation order
func (c ValidationChecks) Failed() []string {
	failed := make([]string, 0, 5)
	if !c.MarketCap {
		failed = append(failed, "market_cap")
	}
	if !c.Volume {
		failed = append(failed, "volume")
	}
	if !c.Volatility {
		failed = append(failed, "volatility")
	}
	if !c.SharpeRatio {
		failed = append(failed, "sharpe_ratio")
	}
	if !c.DataQuality {
		failed = append(failed, "data_quality")
	}
	return failed
}

// ValidationResult is the verdict for one candidate
// Metrics/Checks는 데이터 부족/조회 실패 시 nil
type ValidationResult struct {
	IsValid       bool              `json:"is_valid"`
	QualityScore  float64           `json:"quality_score"` // 0 ~ 100
	FailureReason string            `json:"failure_reason,omitempty"`
	Metrics       *QualityMetrics   `json:"validation_metrics,omitempty"`
	Checks        *ValidationChecks `json:"validation_checks,omitempty"`
}

// ValidatedStock is a candidate augmented with its verdict
type ValidatedStock struct {
	CandidateStock
	ValidationResult
}

// FailureSummary formats failed check names the way failure reasons are stored
func FailureSummary(failed []string) string {
	return "failed: " + strings.Join(failed, ", ")
}
