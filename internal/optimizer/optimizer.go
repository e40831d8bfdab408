package optimizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/internal/engineconfig"
	"github.com/wonny/allocator/pkg/logger"
)

// TradingDaysPerYear is the annualization factor
const TradingDaysPerYear = 252

var (
	ErrInsufficientAssets = errors.New("at least 2 assets required")
	ErrInsufficientData   = errors.New("insufficient return history")
	ErrUnknownMethod      = errors.New("unknown optimization method")
)

// Options are the optimizer bounds and solver budget
type Options struct {
	MinAllocation     float64
	MaxAllocation     float64
	MinExpectedReturn float64
	MinPhase1Weight   float64 // 1단계 결과 채택 최소 비중
	MinReturnRows     int
	MaxIterations     int
	Tolerance         float64
}

// DefaultOptions returns the built-in optimizer options
func DefaultOptions() Options {
	return OptionsFromConfig(engineconfig.Default().Optimizer)
}

// OptionsFromConfig maps engine config to Options
func OptionsFromConfig(c engineconfig.OptimizerConfig) Options {
	return Options{
		MinAllocation:     c.MinAllocation,
		MaxAllocation:     c.MaxAllocation,
		MinExpectedReturn: c.MinExpectedReturn,
		MinPhase1Weight:   c.MinPhase1Weight,
		MinReturnRows:     c.MinReturnRows,
		MaxIterations:     c.MaxIterations,
		Tolerance:         c.Tolerance,
	}
}

// Result is the optimizer output with diagnostics
type Result struct {
	Weights            contracts.PortfolioWeights `json:"weights"` // 호출자 종목 순서, 제외 종목은 0
	Method             Method                     `json:"method"`
	Phase              Phase                      `json:"phase"`
	Status             Status                     `json:"status"`
	Fallback           bool                       `json:"fallback"`
	Dropped            []string                   `json:"dropped,omitempty"` // 기대수익률 필터로 제외
	ExpectedReturn     float64                    `json:"expected_return"`
	ExpectedVolatility float64                    `json:"expected_volatility"`
	ReturnRows         int                        `json:"return_rows"`
}

// Optimizer solves the constrained mean-variance allocation
// ⭐ Stateless: 호출마다 입력만으로 결과 결정
type Optimizer struct {
	opts   Options
	logger *logger.Logger
}

// New creates an Optimizer
func New(opts Options, log *logger.Logger) *Optimizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Optimizer{opts: opts, logger: log}
}

// Optimize computes weights for prices using method
func (o *Optimizer) Optimize(prices *contracts.PriceSeries, method Method) (*Result, error) {
	if method != MaxSharpe && method != MinVariance {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if prices == nil || len(prices.Symbols) < 2 {
		return nil, ErrInsufficientAssets
	}

	returns := prices.Returns()
	if len(returns) < o.opts.MinReturnRows {
		return nil, fmt.Errorf("%w: %d return rows, need %d", ErrInsufficientData, len(returns), o.opts.MinReturnRows)
	}

	mu, sigma := estimate(returns, len(prices.Symbols))

	// 1. 기대수익률 필터 (2개 미만이면 전체 사용)
	active := make([]int, 0, len(mu))
	for j, m := range mu {
		if m > o.opts.MinExpectedReturn {
			active = append(active, j)
		}
	}
	if len(active) < 2 {
		active = active[:0]
		for j := range mu {
			active = append(active, j)
		}
	}

	result := &Result{Method: method, ReturnRows: len(returns)}
	inPlay := make(map[int]bool, len(active))
	for _, j := range active {
		inPlay[j] = true
	}
	for j, sym := range prices.Symbols {
		if !inPlay[j] {
			result.Dropped = append(result.Dropped, sym)
		}
	}

	subMu := make([]float64, len(active))
	for k, j := range active {
		subMu[k] = mu[j]
	}
	subSigma := mat.NewSymDense(len(active), nil)
	for a, i := range active {
		for b := a; b < len(active); b++ {
			subSigma.SetSym(a, b, sigma.At(i, active[b]))
		}
	}

	log := o.logger.WithFields(map[string]interface{}{
		"method":  string(method),
		"assets":  len(active),
		"dropped": len(result.Dropped),
	})

	var weights []float64
	switch method {
	case MaxSharpe:
		weights = o.maxSharpe(subMu, subSigma, result, log)
	case MinVariance:
		weights = o.minVariance(subSigma, result, log)
	}

	if weights == nil {
		names := make([]string, len(active))
		for k, j := range active {
			names[k] = prices.Symbols[j]
		}
		weights = contracts.EqualWeights(names).Weights
		result.Phase = PhaseFallback
		result.Fallback = true
		log.WithField("status", string(result.Status)).Warn("optimization failed, using equal weights")
	}

	full := make([]float64, len(prices.Symbols))
	for k, j := range active {
		full[j] = weights[k]
	}
	result.Weights = contracts.PortfolioWeights{
		Symbols: append([]string(nil), prices.Symbols...),
		Weights: full,
	}

	result.ExpectedReturn, result.ExpectedVolatility = portfolioMetrics(subMu, subSigma, weights)

	log.WithFields(map[string]interface{}{
		"phase":  string(result.Phase),
		"status": string(result.Status),
	}).Debug("optimization complete")

	return result, nil
}

// maxSharpe runs phase 1 (long-only) then phase 2 (bounded)
func (o *Optimizer) maxSharpe(mu []float64, sigma *mat.SymDense, result *Result, log *logger.Logger) []float64 {
	solver := Solver{MaxIterations: o.opts.MaxIterations, Tolerance: o.opts.Tolerance}

	// 1단계: maximize μᵀw − 0.5·wᵀΣw, 0 ≤ w ≤ 1
	sol := solver.Solve(Problem{Q: sigma, C: mu, Lower: 0, Upper: 1})
	result.Status = sol.Status
	if sol.Status.Usable() {
		w := normalize(sol.Weights)
		if w != nil && minimum(w) >= o.opts.MinPhase1Weight {
			result.Phase = PhaseUnconstrained
			return w
		}
		log.Debug("phase 1 produced tiny weights, applying allocation bounds")
	}

	// 2단계: min_allocation ≤ w ≤ max_allocation
	sol = solver.Solve(Problem{Q: sigma, C: mu, Lower: o.opts.MinAllocation, Upper: o.opts.MaxAllocation})
	result.Status = sol.Status
	if sol.Status.Usable() {
		if w := normalize(sol.Weights); w != nil {
			result.Phase = PhaseConstrained
			return w
		}
	}
	return nil
}

// minVariance minimizes wᵀΣw within allocation bounds
// 최적(optimal) 상태만 채택
func (o *Optimizer) minVariance(sigma *mat.SymDense, result *Result, log *logger.Logger) []float64 {
	solver := Solver{MaxIterations: o.opts.MaxIterations, Tolerance: o.opts.Tolerance}

	sol := solver.Solve(Problem{Q: sigma, Lower: o.opts.MinAllocation, Upper: o.opts.MaxAllocation})
	result.Status = sol.Status
	if sol.Status != StatusOptimal {
		return nil
	}
	w := normalize(sol.Weights)
	if w == nil {
		return nil
	}
	result.Phase = PhaseConstrained
	return w
}

// estimate returns annualized mean returns and sample covariance
func estimate(returns [][]float64, n int) ([]float64, *mat.SymDense) {
	data := mat.NewDense(len(returns), n, nil)
	for i, row := range returns {
		data.SetRow(i, row)
	}

	mu := make([]float64, n)
	for j := 0; j < n; j++ {
		mu[j] = stat.Mean(mat.Col(nil, j, data), nil) * TradingDaysPerYear
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)
	cov.ScaleSym(TradingDaysPerYear, &cov)

	return mu, &cov
}

// normalize clips negatives and rescales to Σ = 1; nil if nothing is left
func normalize(w []float64) []float64 {
	out := make([]float64, len(w))
	sum := 0.0
	for i, x := range w {
		if math.IsNaN(x) {
			return nil
		}
		out[i] = math.Max(0, x)
		sum += out[i]
	}
	if sum <= 0 {
		return nil
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func minimum(w []float64) float64 {
	m := math.Inf(1)
	for _, x := range w {
		m = math.Min(m, x)
	}
	return m
}

// portfolioMetrics returns μᵀw and √(wᵀΣw)
func portfolioMetrics(mu []float64, sigma *mat.SymDense, w []float64) (float64, float64) {
	ret := 0.0
	for i := range w {
		ret += mu[i] * w[i]
	}
	wv := mat.NewVecDense(len(w), w)
	variance := mat.Inner(wv, sigma, wv)
	return ret, math.Sqrt(math.Max(0, variance))
}
