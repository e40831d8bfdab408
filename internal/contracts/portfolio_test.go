package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualWeights(t *testing.T) {
	w := EqualWeights([]string{"AAPL", "MSFT", "JNJ", "V"})

	require.Len(t, w.Weights, 4)
	for _, v := range w.Weights {
		assert.InDelta(t, 0.25, v, 1e-12)
	}
	assert.NoError(t, w.Validate())
}

func TestPortfolioWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights PortfolioWeights
		wantErr bool
	}{
		{"valid", PortfolioWeights{Symbols: []string{"A", "B"}, Weights: []float64{0.7, 0.3}}, false},
		{"sum too low", PortfolioWeights{Symbols: []string{"A", "B"}, Weights: []float64{0.5, 0.3}}, true},
		{"negative", PortfolioWeights{Symbols: []string{"A", "B"}, Weights: []float64{1.2, -0.2}}, true},
		{"length mismatch", PortfolioWeights{Symbols: []string{"A"}, Weights: []float64{0.5, 0.5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPortfolioWeights_Get(t *testing.T) {
	w := PortfolioWeights{Symbols: []string{"AAPL", "MSFT"}, Weights: []float64{0.6, 0.4}}

	v, ok := w.Get("MSFT")
	assert.True(t, ok)
	assert.Equal(t, 0.4, v)

	_, ok = w.Get("TSLA")
	assert.False(t, ok)
}

func TestPortfolio_Totals(t *testing.T) {
	p := &Portfolio{
		Allocations: []Allocation{
			{Symbol: "AAPL", Name: "Apple", Weight: 0.5, Amount: 5000},
			{Symbol: "MSFT", Name: "Microsoft", Weight: 0.3, Amount: 3000},
			{Symbol: "JNJ", Name: "Johnson & Johnson", Weight: 0.2, Amount: 2000},
		},
		TotalInvestment: 10000,
	}

	assert.InDelta(t, 1.0, p.TotalWeight(), 1e-12)
	assert.InDelta(t, 10000, p.TotalAmount(), 1e-9)

	a, ok := p.GetAllocation("MSFT")
	require.True(t, ok)
	assert.Equal(t, "Microsoft", a.Name)

	_, ok = p.GetAllocation("XOM")
	assert.False(t, ok)
}

func TestValidationResult_JSON(t *testing.T) {
	stock := ValidatedStock{
		CandidateStock: CandidateStock{Symbol: "AAPL", Name: "Apple"},
		ValidationResult: ValidationResult{
			IsValid:       false,
			QualityScore:  0,
			FailureReason: "insufficient historical data",
		},
	}

	data, err := json.Marshal(stock)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	// embedded 필드는 평탄화되어야 함
	assert.Equal(t, "AAPL", decoded["symbol"])
	assert.Equal(t, false, decoded["is_valid"])
	assert.Equal(t, "insufficient historical data", decoded["failure_reason"])
	assert.NotContains(t, decoded, "validation_metrics")
}

func TestValidationChecks(t *testing.T) {
	checks := ValidationChecks{MarketCap: true, Volume: false, Volatility: true, SharpeRatio: false, DataQuality: true}

	assert.Equal(t, 3, checks.Passed())
	assert.Equal(t, []string{"volume", "sharpe_ratio"}, checks.Failed())
	assert.Equal(t, "failed: volume, sharpe_ratio", FailureSummary(checks.Failed()))
}
