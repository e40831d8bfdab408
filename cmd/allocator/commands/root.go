package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	engineConfigPath string
	synthetic        bool
	verbose          bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "allocator",
	Short: "MPT 포트폴리오 배분 엔진",
	Long: `Allocator CLI

종목 품질 검증 → 평균-분산 최적화 → 리스크 지표 → 배분 설명.

Usage:
  go run ./cmd/allocator [command]

Examples:
  go run ./cmd/allocator api
  go run ./cmd/allocator validate AAPL MSFT KO
  go run ./cmd/allocator optimize AAPL MSFT JNJ --amount 25000
  go run ./cmd/allocator scheduler start
  go run ./cmd/allocator config check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineConfigPath, "engine-config", "", "engine YAML (default: $ENGINE_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVar(&synthetic, "synthetic", false, "use seeded synthetic market data only (offline)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
