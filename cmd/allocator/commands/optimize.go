package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/internal/marketdata"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize SYMBOL SYMBOL [SYMBOL...]",
	Short: "포트폴리오 최적화",
	Long: `지정한 종목으로 롱온리 평균-분산 최적화를 실행합니다.

방법:
  max_sharpe    - 위험 조정 수익 최대화 (기본)
  min_variance  - 분산 최소화 (종목당 5% ~ 50%)

Example:
  go run ./cmd/allocator optimize AAPL MSFT JNJ
  go run ./cmd/allocator optimize AAPL MSFT --amount 50000 --period 1y --method min_variance
  go run ./cmd/allocator optimize AAPL KO --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runOptimize,
}

var (
	optimizeAmount float64
	optimizePeriod string
	optimizeMethod string
	optimizeJSON   bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().Float64Var(&optimizeAmount, "amount", allocation.DefaultInvestment, "투자 금액 (USD)")
	optimizeCmd.Flags().StringVar(&optimizePeriod, "period", marketdata.DefaultPeriod, "데이터 기간 (1mo|3mo|6mo|1y|2y|5y|10y|ytd|max)")
	optimizeCmd.Flags().StringVar(&optimizeMethod, "method", "", "최적화 방법 (default: engine config)")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "JSON 출력")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := newDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	portfolio, err := d.service.Optimize(ctx, allocation.Request{
		Stocks:           candidatesFrom(args, d.engine.Watchlist),
		InvestmentAmount: optimizeAmount,
		DataPeriod:       optimizePeriod,
		Method:           optimizeMethod,
	})
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	if optimizeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(portfolio)
	}

	PrintPortfolio(portfolio)
	return nil
}
