package allocation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/pkg/config"
	"github.com/wonny/allocator/pkg/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	return NewRepository(db.Pool)
}

func TestRepository_PortfolioRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p := &contracts.Portfolio{
		ID:              uuid.NewString(),
		Method:          "max_sharpe",
		Phase:           "constrained",
		TotalInvestment: 10000,
		Explanation:     "test",
		DataPeriod:      "2y",
		DataPoints:      500,
		RiskMetrics: contracts.RiskReport{
			AnnualReturn: 0.12, AnnualVolatility: 0.2, SharpeRatio: 0.6,
			VaR95: -0.02, CVaR95: -0.03, MaxDrawdown: -0.15,
		},
		Allocations: []contracts.Allocation{
			{Symbol: "MSFT", Name: "Microsoft", Weight: 0.6, Amount: 6000},
			{Symbol: "AAPL", Name: "Apple", Weight: 0.4, Amount: 4000},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.SavePortfolio(ctx, p))

	got, err := repo.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Allocations, got.Allocations, "position order preserved")
	assert.Equal(t, p.RiskMetrics, got.RiskMetrics)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetPortfolio(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetPortfolio(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ValidationLatestWins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sym := "T" + uuid.NewString()[:6]
	first := contracts.ValidatedStock{
		CandidateStock:   contracts.CandidateStock{Symbol: sym},
		ValidationResult: contracts.ValidationResult{IsValid: true, QualityScore: 90, Metrics: &contracts.QualityMetrics{MarketCap: 1e12, DataPoints: 252}},
	}
	require.NoError(t, repo.SaveValidation(ctx, []contracts.ValidatedStock{first}))

	second := contracts.ValidatedStock{
		CandidateStock:   contracts.CandidateStock{Symbol: sym},
		ValidationResult: contracts.ValidationResult{IsValid: false, FailureReason: "insufficient historical data"},
	}
	require.NoError(t, repo.SaveValidation(ctx, []contracts.ValidatedStock{second}))

	listed, err := repo.ListValidated(ctx, 1000)
	require.NoError(t, err)
	for _, s := range listed {
		assert.NotEqual(t, sym, s.Symbol, "latest verdict is invalid")
	}
}
