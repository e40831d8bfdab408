package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		weights []float64
		want    string
	}{
		{
			name:    "highest allocation",
			symbols: []string{"AAPL", "MSFT", "JNJ"},
			weights: []float64{0.25, 0.55, 0.20},
			want: intro + "\n" +
				"Highest allocation: MSFT (55.0%) - best risk-adjusted returns.",
		},
		{
			name:    "small weights counted",
			symbols: []string{"AAPL", "MSFT", "JNJ", "KO"},
			weights: []float64{0.97, 0.01, 0.015, 0.005},
			want: intro + "\n" +
				"Highest allocation: AAPL (97.0%) - best risk-adjusted returns.\n" +
				"3 stocks received 1% minimum allocation for diversification.",
		},
		{
			name:    "tie picks first",
			symbols: []string{"A", "B"},
			weights: []float64{0.5, 0.5},
			want: intro + "\n" +
				"Highest allocation: A (50.0%) - best risk-adjusted returns.",
		},
		{
			name:    "length mismatch",
			symbols: []string{"A", "B"},
			weights: []float64{1},
			want:    Generic,
		},
		{
			name:    "empty",
			symbols: nil,
			weights: nil,
			want:    Generic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Explain(tt.symbols, tt.weights))
		})
	}
}

func TestExplain_NeverEmpty(t *testing.T) {
	got := Explain([]string{"A"}, []float64{1})
	assert.True(t, strings.HasPrefix(got, intro))
}
