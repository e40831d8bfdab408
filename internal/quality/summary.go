package quality

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/allocator/internal/contracts"
)

// Summary writes the validated-stock table
func Summary(w io.Writer, stocks []contracts.ValidatedStock) {
	line := strings.Repeat("-", 60)

	fmt.Fprintln(w, "VALIDATED STOCKS")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%-3s %-7s %-6s %-12s %-7s %-6s\n", "#", "Symbol", "Score", "Market Cap", "Sharpe", "Vol%")
	fmt.Fprintln(w, line)

	for i, s := range stocks {
		var marketCap, sharpe, volatility float64
		if s.Metrics != nil {
			marketCap = s.Metrics.MarketCap
			sharpe = s.Metrics.SharpeRatio
			volatility = s.Metrics.Volatility
		}

		fmt.Fprintf(w, "%-3d %-7s %-6.1f %-12s %-7.2f %-5.1f%%\n",
			i+1, s.Symbol, s.QualityScore, FormatMarketCap(marketCap), sharpe, volatility*100)
	}

	fmt.Fprintln(w, line)
}

// FormatMarketCap renders $xB / $xM, or N/A
func FormatMarketCap(v float64) string {
	switch {
	case v > 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v > 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	default:
		return "N/A"
	}
}
