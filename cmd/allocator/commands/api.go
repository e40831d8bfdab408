package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/allocator/internal/api"
	"github.com/wonny/allocator/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                  - Health check
  GET  /api/industries          - 산업 목록
  POST /api/stocks/validate     - 후보 종목 품질 검증
  GET  /api/stocks/validated    - 최근 검증 통과 종목 (DB 필요)
  POST /api/portfolio/optimize  - 포트폴리오 최적화
  GET  /api/portfolio/{id}      - 저장된 포트폴리오 조회 (DB 필요)

Example:
  go run ./cmd/allocator api
  go run ./cmd/allocator api --port 8080 --synthetic`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Allocator API Server ===")

	ctx := cmd.Context()

	d, err := newDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	router := api.NewRouter(
		handlers.NewStockHandler(d.service, d.log),
		handlers.NewPortfolioHandler(d.service, d.log),
		d.log,
	)
	server := api.New(d.cfg, d.log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	if d.db == nil {
		PrintWarning("DATABASE_URL not set: portfolios are not persisted")
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	d.log.Info("Server stopped")
	return nil
}
