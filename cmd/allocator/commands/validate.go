package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/internal/quality"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [SYMBOL...]",
	Short: "종목 품질 검증",
	Long: `후보 종목을 시가총액, 거래량, 변동성, 샤프비율, 데이터 충분성으로 검증합니다.

종목을 지정하지 않으면 엔진 설정의 watchlist를 사용합니다.

Example:
  go run ./cmd/allocator validate
  go run ./cmd/allocator validate AAPL MSFT KO --max 5`,
	RunE: runValidate,
}

var (
	validateMax int
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().IntVar(&validateMax, "max", quality.DefaultMaxCount, "최대 선택 종목 수")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := newDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	candidates := candidatesFrom(args, d.engine.Watchlist)

	PrintHeader("Stock Validation", fmt.Sprintf("%d candidates", len(candidates)))

	all, selected, err := d.service.ScreenEach(ctx, candidates, validateMax, printProgress)
	fmt.Println()
	quality.Summary(os.Stdout, all)
	fmt.Println()

	if errors.Is(err, allocation.ErrNoValidCandidates) {
		PrintWarning(fmt.Sprintf("Fewer than %d stocks passed validation", d.engine.Quality.MinValid))
		return nil
	}
	if err != nil {
		return err
	}

	symbols := make([]string, len(selected))
	for i, s := range selected {
		symbols[i] = s.Symbol
	}
	PrintSuccess(fmt.Sprintf("%d selected: %s", len(selected), strings.Join(symbols, ", ")))
	return nil
}

// printProgress prints one line per verdict as it arrives
func printProgress(done, total int, stock contracts.ValidatedStock) {
	verdict := "PASSED"
	if !stock.IsValid {
		verdict = "FAILED"
	}
	fmt.Printf("  [%d/%d] %-8s %s (score %.0f)\n", done, total, stock.Symbol, verdict, stock.QualityScore)
}

// candidatesFrom builds candidates from CLI args, or the watchlist when none
func candidatesFrom(args []string, watchlist []engineconfig.WatchStock) []contracts.CandidateStock {
	if len(args) == 0 {
		out := make([]contracts.CandidateStock, len(watchlist))
		for i, w := range watchlist {
			out[i] = contracts.CandidateStock{Symbol: w.Symbol, Name: w.Name, Industry: w.Industry}
		}
		return out
	}

	bySymbol := make(map[string]engineconfig.WatchStock, len(watchlist))
	for _, w := range watchlist {
		bySymbol[strings.ToUpper(w.Symbol)] = w
	}

	out := make([]contracts.CandidateStock, 0, len(args))
	for _, a := range args {
		sym := strings.ToUpper(strings.TrimSpace(a))
		if sym == "" {
			continue
		}
		c := contracts.CandidateStock{Symbol: sym}
		if w, ok := bySymbol[sym]; ok {
			c.Name, c.Industry = w.Name, w.Industry
		}
		out = append(out, c)
	}
	return out
}
