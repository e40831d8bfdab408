package contracts

import (
	"fmt"
	"math"
	"time"
)

// WeightTolerance is the allowed deviation of Σweight from 1
const WeightTolerance = 1e-6

// PortfolioWeights maps symbols to weights in a fixed order
// ⭐ 계약: 반환되는 모든 배분은 Σweight = 1 (fallback 포함)
type PortfolioWeights struct {
	Symbols []string  `json:"symbols"`
	Weights []float64 `json:"weights"`
}

// EqualWeights returns 1/N for every symbol
func EqualWeights(symbols []string) PortfolioWeights {
	w := make([]float64, len(symbols))
	for i := range w {
		w[i] = 1.0 / float64(len(symbols))
	}
	return PortfolioWeights{Symbols: append([]string(nil), symbols...), Weights: w}
}

// Sum returns the total weight
func (pw PortfolioWeights) Sum() float64 {
	total := 0.0
	for _, w := range pw.Weights {
		total += w
	}
	return total
}

// Get returns the weight of symbol
func (pw PortfolioWeights) Get(symbol string) (float64, bool) {
	for i, s := range pw.Symbols {
		if s == symbol {
			return pw.Weights[i], true
		}
	}
	return 0, false
}

// Validate checks the non-negativity and sum-to-one invariants
func (pw PortfolioWeights) Validate() error {
	if len(pw.Symbols) != len(pw.Weights) {
		return fmt.Errorf("weights: %d symbols, %d weights", len(pw.Symbols), len(pw.Weights))
	}
	for i, w := range pw.Weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("weights: %s has invalid weight %v", pw.Symbols[i], w)
		}
	}
	if math.Abs(pw.Sum()-1) > WeightTolerance {
		return fmt.Errorf("weights: sum %.8f != 1", pw.Sum())
	}
	return nil
}

// Allocation is the dollar split for one symbol
type Allocation struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Amount float64 `json:"amount"` // weight × 투자금액
}

// Portfolio is an optimized allocation with its analytics
// ⭐ SSOT: Optimize 결과 → API/저장소 전달
type Portfolio struct {
	ID              string       `json:"id"`
	Method          string       `json:"method"`
	Phase           string       `json:"phase"`
	Fallback        bool         `json:"fallback"`
	Allocations     []Allocation `json:"allocations"`
	Explanation     string       `json:"explanation"`
	TotalInvestment float64      `json:"total_investment"`
	RiskMetrics     RiskReport   `json:"risk_metrics"`
	RiskWarnings    []string     `json:"risk_warnings,omitempty"`
	DataPeriod      string       `json:"data_period"`
	DataPoints      int          `json:"data_points"`
	Timings         Timings      `json:"performance_info"`
	CreatedAt       time.Time    `json:"created_at"`
}

// Timings records how long each stage took
type Timings struct {
	Total        time.Duration `json:"total"`
	DataFetch    time.Duration `json:"data_fetch"`
	Optimization time.Duration `json:"optimization"`
	Explanation  time.Duration `json:"explanation"`
	Metrics      time.Duration `json:"metrics"`
}

// TotalWeight returns the sum of all allocation weights
func (p *Portfolio) TotalWeight() float64 {
	total := 0.0
	for _, a := range p.Allocations {
		total += a.Weight
	}
	return total
}

// TotalAmount returns the sum of all allocation amounts
func (p *Portfolio) TotalAmount() float64 {
	total := 0.0
	for _, a := range p.Allocations {
		total += a.Amount
	}
	return total
}

// GetAllocation finds an allocation by symbol
func (p *Portfolio) GetAllocation(symbol string) (*Allocation, bool) {
	for i := range p.Allocations {
		if p.Allocations[i].Symbol == symbol {
			return &p.Allocations[i], true
		}
	}
	return nil, false
}
