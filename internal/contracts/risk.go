package contracts

// RiskReport holds post-hoc portfolio statistics
// ⚠️ VaR95/CVaR95는 일간(비연율화) 수익률 기준, 손실은 음수
// 나머지 지표는 연율화 (252 거래일)
type RiskReport struct {
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	VaR95            float64 `json:"var_95"`
	CVaR95           float64 `json:"cvar_95"`
	MaxDrawdown      float64 `json:"max_drawdown"` // 0 이하
}
