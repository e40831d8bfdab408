package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/allocator/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled block header
func PrintHeader(title, subtitle string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	if subtitle != "" {
		fmt.Printf("  %s\n", subtitle)
	}
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintPortfolio prints allocations, risk metrics and the explanation
func PrintPortfolio(p *contracts.Portfolio) {
	subtitle := fmt.Sprintf("%s / %s / %d rows (%s)", p.Method, p.Phase, p.DataPoints, p.DataPeriod)
	if p.Fallback {
		subtitle += " / equal-weight fallback"
	}
	PrintHeader("Portfolio "+p.ID, subtitle)

	widths := []int{8, 28, 9, 14}
	PrintTableHeader([]string{"Symbol", "Name", "Weight", "Amount"}, widths)
	for _, a := range p.Allocations {
		PrintTableRow([]string{
			a.Symbol,
			truncate(a.Name, widths[1]),
			fmt.Sprintf("%6.2f%%", a.Weight*100),
			fmt.Sprintf("$%12.2f", a.Amount),
		}, widths)
	}
	PrintSeparator()
	PrintTableRow([]string{"Total", "", fmt.Sprintf("%6.2f%%", p.TotalWeight()*100), fmt.Sprintf("$%12.2f", p.TotalAmount())}, widths)

	m := p.RiskMetrics
	fmt.Println()
	PrintKeyValue("Annual return", fmt.Sprintf("%.2f%%", m.AnnualReturn*100), 17)
	PrintKeyValue("Annual volatility", fmt.Sprintf("%.2f%%", m.AnnualVolatility*100), 17)
	PrintKeyValue("Sharpe ratio", fmt.Sprintf("%.2f", m.SharpeRatio), 17)
	PrintKeyValue("VaR 95 (daily)", fmt.Sprintf("%.2f%%", m.VaR95*100), 17)
	PrintKeyValue("CVaR 95 (daily)", fmt.Sprintf("%.2f%%", m.CVaR95*100), 17)
	PrintKeyValue("Max drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100), 17)

	if len(p.RiskWarnings) > 0 {
		PrintWarning("Risk limits exceeded:")
		PrintList(p.RiskWarnings)
	}

	fmt.Println()
	fmt.Println(p.Explanation)
	fmt.Println()
	fmt.Printf("⏱  total %s (fetch %s, optimize %s, metrics %s)\n",
		p.Timings.Total.Round(1e6), p.Timings.DataFetch.Round(1e6),
		p.Timings.Optimization.Round(1e6), p.Timings.Metrics.Round(1e6))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
