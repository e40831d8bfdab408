package engineconfig

// Config is the engine parameter file (config/engine.yaml)
// ⭐ SSOT: 검증 임계값/점수 구간/최적화 경계는 여기서만 정의
// 주의: map 대신 struct 사용 (해시 재현성)
type Config struct {
	Meta      Meta            `yaml:"meta" json:"meta"`
	Quality   Quality         `yaml:"quality" json:"quality"`
	Optimizer OptimizerConfig `yaml:"optimizer" json:"optimizer"`
	Risk      RiskLimits      `yaml:"risk" json:"risk"`
	Schedule  Schedule        `yaml:"schedule" json:"schedule"`
	Watchlist []WatchStock    `yaml:"watchlist" json:"watchlist"`
}

// Meta identifies the parameter set
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Quality holds validator thresholds and score bands
type Quality struct {
	MinMarketCap    float64 `yaml:"min_market_cap" json:"min_market_cap"`
	MinAvgVolume    float64 `yaml:"min_avg_volume" json:"min_avg_volume"`
	MaxVolatility   float64 `yaml:"max_volatility" json:"max_volatility"`
	MinSharpe       float64 `yaml:"min_sharpe" json:"min_sharpe"`
	MinDataPoints   int     `yaml:"min_data_points" json:"min_data_points"`
	MinChecksPassed int     `yaml:"min_checks_passed" json:"min_checks_passed"`
	PointsPerCheck  float64 `yaml:"points_per_check" json:"points_per_check"`
	MaxScore        float64 `yaml:"max_score" json:"max_score"`
	HistoryPeriod   string  `yaml:"history_period" json:"history_period"`
	MinValid        int     `yaml:"min_valid" json:"min_valid"` // 이보다 적으면 빈 결과

	Bands Bands `yaml:"bands" json:"bands"`
}

// Bands are the bonus tiers added on top of the per-check points
type Bands struct {
	MarketCap  []Band `yaml:"market_cap" json:"market_cap"` // 값 > 임계
	Sharpe     []Band `yaml:"sharpe" json:"sharpe"`         // 값 > 임계
	Volume     []Band `yaml:"volume" json:"volume"`         // 값 > 임계
	Volatility []Band `yaml:"volatility" json:"volatility"` // 값 < 임계
}

// Band awards Points when the metric crosses Threshold
// 첫 번째로 만족하는 구간만 적용 (내림/오름차순 정렬 필수)
type Band struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Points    float64 `yaml:"points" json:"points"`
}

// OptimizerConfig holds optimizer bounds and solver budget
type OptimizerConfig struct {
	DefaultMethod     string  `yaml:"default_method" json:"default_method"`
	MinAllocation     float64 `yaml:"min_allocation" json:"min_allocation"`
	MaxAllocation     float64 `yaml:"max_allocation" json:"max_allocation"`
	MinExpectedReturn float64 `yaml:"min_expected_return" json:"min_expected_return"`
	MinPhase1Weight   float64 `yaml:"min_phase1_weight" json:"min_phase1_weight"`
	MinReturnRows     int     `yaml:"min_return_rows" json:"min_return_rows"`
	MaxIterations     int     `yaml:"max_iterations" json:"max_iterations"`
	Tolerance         float64 `yaml:"tolerance" json:"tolerance"`
}

// RiskLimits are soft limits reported as warnings
type RiskLimits struct {
	MaxVaR95    float64 `yaml:"max_var_95" json:"max_var_95"`     // 음수, 일간
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"` // 음수
	MinSharpe   float64 `yaml:"min_sharpe" json:"min_sharpe"`
}

// Schedule controls the background jobs (cron with seconds field, "" disables)
type Schedule struct {
	RevalidateCron string `yaml:"revalidate_cron" json:"revalidate_cron"`
	WarmCacheCron  string `yaml:"warm_cache_cron" json:"warm_cache_cron"`
	MaxCount       int    `yaml:"max_count" json:"max_count"`
}

// WatchStock is a candidate the scheduler re-validates
type WatchStock struct {
	Symbol   string `yaml:"symbol" json:"symbol"`
	Name     string `yaml:"name" json:"name"`
	Industry string `yaml:"industry" json:"industry"`
}

// Default returns the built-in engine parameters
func Default() *Config {
	return &Config{
		Meta: Meta{ProfileID: "default", Version: "1"},
		Quality: Quality{
			MinMarketCap:    10e9,
			MinAvgVolume:    1e6,
			MaxVolatility:   0.40,
			MinSharpe:       0.5,
			MinDataPoints:   100,
			MinChecksPassed: 4,
			PointsPerCheck:  12,
			MaxScore:        100,
			HistoryPeriod:   "1y",
			MinValid:        2,
			Bands: Bands{
				MarketCap:  []Band{{100e9, 10}, {50e9, 7}, {20e9, 5}},
				Sharpe:     []Band{{2.0, 10}, {1.5, 7}, {1.0, 5}},
				Volume:     []Band{{10e6, 10}, {5e6, 7}, {2e6, 5}},
				Volatility: []Band{{0.20, 10}, {0.25, 7}, {0.30, 5}},
			},
		},
		Optimizer: OptimizerConfig{
			DefaultMethod:     "max_sharpe",
			MinAllocation:     0.05,
			MaxAllocation:     0.5,
			MinExpectedReturn: 0.01,
			MinPhase1Weight:   0.005,
			MinReturnRows:     20,
			MaxIterations:     5000,
			Tolerance:         1e-10,
		},
		Risk: RiskLimits{
			MaxVaR95:    -0.03,
			MaxDrawdown: -0.30,
			MinSharpe:   0.5,
		},
		Schedule: Schedule{
			RevalidateCron: "0 0 7 * * 1-5",
			WarmCacheCron:  "0 30 6 * * 1-5",
			MaxCount:       10,
		},
		Watchlist: []WatchStock{
			{Symbol: "AAPL", Name: "Apple Inc.", Industry: "Technology"},
			{Symbol: "MSFT", Name: "Microsoft Corporation", Industry: "Technology"},
			{Symbol: "GOOGL", Name: "Alphabet Inc.", Industry: "Technology"},
			{Symbol: "JNJ", Name: "Johnson & Johnson", Industry: "Healthcare"},
			{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Industry: "Financial Services"},
			{Symbol: "V", Name: "Visa Inc.", Industry: "Financial Services"},
			{Symbol: "PG", Name: "Procter & Gamble Co.", Industry: "Consumer Goods"},
			{Symbol: "KO", Name: "The Coca-Cola Company", Industry: "Consumer Goods"},
		},
	}
}
