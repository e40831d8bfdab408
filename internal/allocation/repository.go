package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/allocator/internal/contracts"
)

// Repository implements Store on PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveValidation appends one row per verdict
func (r *Repository) SaveValidation(ctx context.Context, stocks []contracts.ValidatedStock) error {
	if len(stocks) == 0 {
		return nil
	}

	query := `
		INSERT INTO validated_stocks (
			symbol, name, industry, is_valid, quality_score, failure_reason,
			market_cap, avg_volume, volatility, sharpe_ratio, data_points
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, s := range stocks {
		var marketCap, avgVolume, volatility, sharpe *float64
		var dataPoints *int
		if s.Metrics != nil {
			marketCap = &s.Metrics.MarketCap
			avgVolume = &s.Metrics.AvgVolume
			volatility = &s.Metrics.Volatility
			sharpe = &s.Metrics.SharpeRatio
			dataPoints = &s.Metrics.DataPoints
		}
		batch.Queue(query,
			s.Symbol, s.Name, s.Industry, s.IsValid, s.QualityScore, s.FailureReason,
			marketCap, avgVolume, volatility, sharpe, dataPoints,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, s := range stocks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert validation for %s: %w", s.Symbol, err)
		}
	}
	return nil
}

// ListValidated returns the latest verdict per symbol among valid stocks, best first
func (r *Repository) ListValidated(ctx context.Context, limit int) ([]contracts.ValidatedStock, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT symbol, name, industry, is_valid, quality_score, failure_reason,
		       market_cap, avg_volume, volatility, sharpe_ratio, data_points
		FROM (
			SELECT DISTINCT ON (symbol) *
			FROM validated_stocks
			ORDER BY symbol, validated_at DESC
		) latest
		WHERE is_valid
		ORDER BY quality_score DESC, symbol
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validated stocks: %w", err)
	}
	defer rows.Close()

	var stocks []contracts.ValidatedStock
	for rows.Next() {
		var s contracts.ValidatedStock
		var marketCap, avgVolume, volatility, sharpe *float64
		var dataPoints *int
		if err := rows.Scan(
			&s.Symbol, &s.Name, &s.Industry, &s.IsValid, &s.QualityScore, &s.FailureReason,
			&marketCap, &avgVolume, &volatility, &sharpe, &dataPoints,
		); err != nil {
			return nil, fmt.Errorf("failed to scan validated stock: %w", err)
		}
		if marketCap != nil {
			s.Metrics = &contracts.QualityMetrics{
				MarketCap:   *marketCap,
				AvgVolume:   deref(avgVolume),
				Volatility:  deref(volatility),
				SharpeRatio: deref(sharpe),
			}
			if dataPoints != nil {
				s.Metrics.DataPoints = *dataPoints
			}
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate validated stocks: %w", err)
	}
	return stocks, nil
}

// SavePortfolio stores the portfolio and its allocations in one transaction
func (r *Repository) SavePortfolio(ctx context.Context, p *contracts.Portfolio) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	m := p.RiskMetrics
	_, err = tx.Exec(ctx, `
		INSERT INTO portfolios (
			id, method, phase, fallback, total_investment, explanation,
			data_period, data_points, annual_return, annual_volatility,
			sharpe_ratio, var_95, cvar_95, max_drawdown, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		p.ID, p.Method, p.Phase, p.Fallback, p.TotalInvestment, p.Explanation,
		p.DataPeriod, p.DataPoints, m.AnnualReturn, m.AnnualVolatility,
		m.SharpeRatio, m.VaR95, m.CVaR95, m.MaxDrawdown, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	for i, a := range p.Allocations {
		_, err := tx.Exec(ctx, `
			INSERT INTO portfolio_stocks (portfolio_id, position, symbol, name, weight, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, i, a.Symbol, a.Name, a.Weight, a.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert allocation %s: %w", a.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPortfolio loads a portfolio with its allocations
func (r *Repository) GetPortfolio(ctx context.Context, id string) (*contracts.Portfolio, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	p := &contracts.Portfolio{}
	m := &p.RiskMetrics
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, method, phase, fallback, total_investment, explanation,
		       data_period, data_points, annual_return, annual_volatility,
		       sharpe_ratio, var_95, cvar_95, max_drawdown, created_at
		FROM portfolios
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Method, &p.Phase, &p.Fallback, &p.TotalInvestment, &p.Explanation,
		&p.DataPeriod, &p.DataPoints, &m.AnnualReturn, &m.AnnualVolatility,
		&m.SharpeRatio, &m.VaR95, &m.CVaR95, &m.MaxDrawdown, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT symbol, name, weight, amount
		FROM portfolio_stocks
		WHERE portfolio_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a contracts.Allocation
		if err := rows.Scan(&a.Symbol, &a.Name, &a.Weight, &a.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		p.Allocations = append(p.Allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}
	return p, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
