// Package explain composes the plain-language portfolio summary.
package explain

import (
	"fmt"
	"strings"
)

const (
	// Generic is returned whenever a detailed summary cannot be built
	Generic = "Portfolio optimization completed successfully."

	intro = "Portfolio optimized using Modern Portfolio Theory for best risk-return balance."

	// smallWeight counts a stock as holding the ~1% minimum
	smallWeight = 0.015
)

// Explain summarizes weights for display
// 실패하지 않음: 길이 불일치/빈 입력/패닉 → Generic
func Explain(symbols []string, weights []float64) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = Generic
		}
	}()

	if len(symbols) == 0 || len(symbols) != len(weights) {
		return Generic
	}

	// 최대 비중 종목 (동률이면 앞 종목)
	best := 0
	for i, w := range weights {
		if w > weights[best] {
			best = i
		}
	}

	small := 0
	for _, w := range weights {
		if w <= smallWeight {
			small++
		}
	}

	lines := []string{
		intro,
		fmt.Sprintf("Highest allocation: %s (%.1f%%) - best risk-adjusted returns.", symbols[best], weights[best]*100),
	}
	if small > 0 {
		lines = append(lines, fmt.Sprintf("%d stocks received 1%% minimum allocation for diversification.", small))
	}

	return strings.Join(lines, "\n")
}
