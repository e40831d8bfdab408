package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/engineconfig"
)

// TradingDaysPerYear is the annualization factor
const TradingDaysPerYear = 252

// Confidence is the VaR confidence level
const Confidence = 0.95

var (
	ErrWeightMismatch   = errors.New("weight symbols do not match price symbols")
	ErrInsufficientData = errors.New("at least 2 price rows required")
)

// Analyzer 리스크 분석기 (순수 계산기)
// ⭐ SSOT: 데이터 수집/한도 정책은 상위 레이어에서 조립, 여기서는 계산만
type Analyzer struct{}

// NewAnalyzer creates an Analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze derives the risk report of weights over prices
func (a *Analyzer) Analyze(prices *contracts.PriceSeries, weights contracts.PortfolioWeights) (contracts.RiskReport, error) {
	if prices == nil || prices.Rows() < 2 {
		return contracts.RiskReport{}, ErrInsufficientData
	}

	aligned, err := alignWeights(prices, weights)
	if err != nil {
		return contracts.RiskReport{}, err
	}

	daily := PortfolioReturns(prices.Returns(), aligned)

	report := contracts.RiskReport{
		AnnualReturn:     Mean(daily) * TradingDaysPerYear,
		AnnualVolatility: StdDev(daily) * math.Sqrt(TradingDaysPerYear),
		MaxDrawdown:      MaxDrawdown(daily),
	}
	if report.AnnualVolatility > 0 {
		report.SharpeRatio = report.AnnualReturn / report.AnnualVolatility
	}
	report.VaR95, report.CVaR95 = HistoricalVaR(daily, Confidence)

	return report, nil
}

// PortfolioReturns returns Σ wᵢ rᵢ per row
func PortfolioReturns(returns [][]float64, weights []float64) []float64 {
	out := make([]float64, len(returns))
	for i, row := range returns {
		var sum float64
		for j, r := range row {
			sum += weights[j] * r
		}
		out[i] = sum
	}
	return out
}

// alignWeights orders weights to match the price columns
func alignWeights(prices *contracts.PriceSeries, weights contracts.PortfolioWeights) ([]float64, error) {
	if len(weights.Symbols) != len(prices.Symbols) || len(weights.Weights) != len(weights.Symbols) {
		return nil, fmt.Errorf("%w: %d weights for %d symbols", ErrWeightMismatch, len(weights.Symbols), len(prices.Symbols))
	}

	out := make([]float64, len(prices.Symbols))
	seen := make([]bool, len(prices.Symbols))
	for i, s := range weights.Symbols {
		j := prices.Index(s)
		if j < 0 {
			return nil, fmt.Errorf("%w: %w: %s", ErrWeightMismatch, contracts.ErrUnknownSymbol, s)
		}
		if seen[j] {
			return nil, fmt.Errorf("%w: duplicate weight for %s", ErrWeightMismatch, s)
		}
		seen[j] = true
		out[j] = weights.Weights[i]
	}
	return out, nil
}

// CheckLimits 리스크 한도 체크 (경고만, 차단하지 않음)
// 한도는 음수 규약: VaR/MDD가 한도보다 작으면 위반
func CheckLimits(report contracts.RiskReport, limits engineconfig.RiskLimits) []string {
	violations := make([]string, 0)

	if report.VaR95 < limits.MaxVaR95 {
		violations = append(violations,
			fmt.Sprintf("VaR95 %.4f below limit %.4f", report.VaR95, limits.MaxVaR95))
	}

	if report.MaxDrawdown < limits.MaxDrawdown {
		violations = append(violations,
			fmt.Sprintf("max drawdown %.4f below limit %.4f", report.MaxDrawdown, limits.MaxDrawdown))
	}

	if report.SharpeRatio < limits.MinSharpe {
		violations = append(violations,
			fmt.Sprintf("sharpe %.2f below minimum %.2f", report.SharpeRatio, limits.MinSharpe))
	}

	return violations
}
