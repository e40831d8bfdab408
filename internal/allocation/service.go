package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/internal/explain"
	"github.com/wonny/allocator/internal/marketdata"
	"github.com/wonny/allocator/internal/optimizer"
	"github.com/wonny/allocator/internal/quality"
	"github.com/wonny/allocator/internal/risk"
	"github.com/wonny/allocator/pkg/logger"
)

// DefaultInvestment is used when the request has no amount
const DefaultInvestment = 10000.0

var (
	ErrNoValidCandidates   = errors.New("not enough stocks passed quality validation")
	ErrTooFewStocks        = errors.New("at least 2 stocks required")
	ErrInvalidAmount       = errors.New("investment amount must be positive")
	ErrInsufficientHistory = errors.New("insufficient historical data")
	ErrNotFound            = errors.New("portfolio not found")
	ErrStoreDisabled       = errors.New("persistence is not configured")
)

// Store persists validation verdicts and portfolios
type Store interface {
	SaveValidation(ctx context.Context, stocks []contracts.ValidatedStock) error
	ListValidated(ctx context.Context, limit int) ([]contracts.ValidatedStock, error)
	SavePortfolio(ctx context.Context, p *contracts.Portfolio) error
	GetPortfolio(ctx context.Context, id string) (*contracts.Portfolio, error)
}

// Request is an optimization request
type Request struct {
	Stocks           []contracts.CandidateStock `json:"stocks"`
	InvestmentAmount float64                    `json:"investment_amount"`
	DataPeriod       string                     `json:"data_period"`
	Method           string                     `json:"method"`
}

// Service chains validation, optimization, risk analysis and explanation
// ⭐ SSOT: 배분 파이프라인 조립은 여기서만
type Service struct {
	cfg       *engineconfig.Config
	validator *quality.Validator
	prices    marketdata.Provider
	optimizer *optimizer.Optimizer
	analyzer  *risk.Analyzer
	store     Store
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a Service; store may be nil
func NewService(cfg *engineconfig.Config, validator *quality.Validator, prices marketdata.Provider, store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		cfg:       cfg,
		validator: validator,
		prices:    prices,
		optimizer: optimizer.New(optimizer.OptionsFromConfig(cfg.Optimizer), log),
		analyzer:  risk.NewAnalyzer(),
		store:     store,
		logger:    log,
		now:       time.Now,
	}
}

// Recommend validates candidates and returns the ranked valid ones
func (s *Service) Recommend(ctx context.Context, candidates []contracts.CandidateStock, maxCount int) ([]contracts.ValidatedStock, error) {
	_, selected, err := s.Screen(ctx, candidates, maxCount)
	return selected, err
}

// Screen validates candidates, persists every verdict and returns all verdicts
// (ranked) together with the selected valid ones
func (s *Service) Screen(ctx context.Context, candidates []contracts.CandidateStock, maxCount int) (all, selected []contracts.ValidatedStock, err error) {
	return s.ScreenEach(ctx, candidates, maxCount, nil)
}

// ScreenEach is Screen reporting each verdict through progress as it is computed
func (s *Service) ScreenEach(ctx context.Context, candidates []contracts.CandidateStock, maxCount int, progress quality.Progress) (all, selected []contracts.ValidatedStock, err error) {
	all = s.validator.ValidateEach(ctx, candidates, progress)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if s.store != nil {
		if err := s.store.SaveValidation(ctx, all); err != nil {
			s.logger.WithError(err).Warn("Failed to persist validation results")
		}
	}

	selected = quality.Select(all, maxCount, s.cfg.Quality.MinValid)
	if len(selected) == 0 {
		return all, nil, fmt.Errorf("%w: %d candidates", ErrNoValidCandidates, len(candidates))
	}
	return all, selected, nil
}

// Optimize builds an allocation for the requested stocks
func (s *Service) Optimize(ctx context.Context, req Request) (*contracts.Portfolio, error) {
	start := s.now()

	stocks := dedupe(req.Stocks)
	if len(stocks) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewStocks, len(stocks))
	}

	amount := req.InvestmentAmount
	if amount == 0 {
		amount = DefaultInvestment
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	period, err := marketdata.NormalizePeriod(req.DataPeriod)
	if err != nil {
		return nil, err
	}

	methodName := req.Method
	if methodName == "" {
		methodName = s.cfg.Optimizer.DefaultMethod
	}
	method, err := optimizer.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(stocks))
	for i, st := range stocks {
		symbols[i] = st.Symbol
	}

	log := s.logger.WithFields(map[string]interface{}{
		"symbols": symbols,
		"method":  string(method),
		"period":  period,
	})

	// 1. 시세 조회
	fetchStart := time.Now()
	prices, err := s.prices.Prices(ctx, symbols, period)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	fetchTime := time.Since(fetchStart)

	// 2. 최적화
	optStart := time.Now()
	result, err := s.optimizer.Optimize(prices, method)
	if err != nil {
		if errors.Is(err, optimizer.ErrInsufficientData) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientHistory, err)
		}
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if err := result.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	optTime := time.Since(optStart)

	// 3. 리스크 지표
	metricsStart := time.Now()
	report, err := s.analyzer.Analyze(prices, result.Weights)
	if err != nil {
		return nil, fmt.Errorf("risk analysis: %w", err)
	}
	warnings := risk.CheckLimits(report, s.cfg.Risk)
	metricsTime := time.Since(metricsStart)

	// 4. 설명
	explainStart := time.Now()
	explanation := explain.Explain(result.Weights.Symbols, result.Weights.Weights)
	explainTime := time.Since(explainStart)

	portfolio := &contracts.Portfolio{
		ID:              uuid.NewString(),
		Method:          string(result.Method),
		Phase:           string(result.Phase),
		Fallback:        result.Fallback,
		Allocations:     make([]contracts.Allocation, len(stocks)),
		Explanation:     explanation,
		TotalInvestment: amount,
		RiskMetrics:     report,
		RiskWarnings:    warnings,
		DataPeriod:      period,
		DataPoints:      prices.Rows(),
		CreatedAt:       s.now().UTC(),
	}
	for i, st := range stocks {
		w, _ := result.Weights.Get(st.Symbol)
		name := st.Name
		if name == "" {
			name = st.Symbol
		}
		portfolio.Allocations[i] = contracts.Allocation{
			Symbol: st.Symbol,
			Name:   name,
			Weight: w,
			Amount: w * amount,
		}
	}
	portfolio.Timings = contracts.Timings{
		Total:        s.now().Sub(start),
		DataFetch:    fetchTime,
		Optimization: optTime,
		Explanation:  explainTime,
		Metrics:      metricsTime,
	}

	if len(warnings) > 0 {
		log.WithField("warnings", warnings).Warn("Portfolio exceeds risk limits")
	}

	if s.store != nil {
		if err := s.store.SavePortfolio(ctx, portfolio); err != nil {
			log.WithError(err).Warn("Failed to persist portfolio")
		}
	}

	log.WithFields(map[string]interface{}{
		"portfolio_id": portfolio.ID,
		"phase":        portfolio.Phase,
		"fallback":     portfolio.Fallback,
		"rows":         portfolio.DataPoints,
	}).Info("Portfolio optimized")

	return portfolio, nil
}

// GetPortfolio loads a stored portfolio
func (s *Service) GetPortfolio(ctx context.Context, id string) (*contracts.Portfolio, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.GetPortfolio(ctx, id)
}

// ListValidated returns the most recent verdicts of valid stocks
func (s *Service) ListValidated(ctx context.Context, limit int) ([]contracts.ValidatedStock, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.ListValidated(ctx, limit)
}

// dedupe normalizes symbols and drops repeats, keeping the first occurrence
func dedupe(stocks []contracts.CandidateStock) []contracts.CandidateStock {
	seen := make(map[string]bool, len(stocks))
	out := make([]contracts.CandidateStock, 0, len(stocks))
	for _, st := range stocks {
		st.Symbol = strings.ToUpper(strings.TrimSpace(st.Symbol))
		if st.Symbol == "" || seen[st.Symbol] {
			continue
		}
		seen[st.Symbol] = true
		out = append(out, st)
	}
	return out
}
