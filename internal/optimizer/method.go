package optimizer

import (
	"fmt"
	"strings"
)

// Method selects the optimization objective
type Method string

const (
	MaxSharpe   Method = "max_sharpe"
	MinVariance Method = "min_variance"
)

// ParseMethod converts a request string to a Method
// 빈 문자열은 max_sharpe
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MaxSharpe:
		return MaxSharpe, nil
	case MinVariance:
		return MinVariance, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Phase records which stage produced the weights
type Phase string

const (
	PhaseUnconstrained Phase = "unconstrained" // 1단계: long-only
	PhaseConstrained   Phase = "constrained"   // 2단계: [min_allocation, max_allocation]
	PhaseFallback      Phase = "fallback"      // 균등 비중
)
