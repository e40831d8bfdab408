package marketdata

import (
	"time"

	"github.com/wonny/allocator/pkg/logger"
	"github.com/wonny/allocator/pkg/redis"
)

// ChainOptions configures NewChain
type ChainOptions struct {
	Cache     *redis.Cache
	CacheTTL  time.Duration
	Fallback  bool
	Attempts  int
	Delay     time.Duration
	Synthetic Provider // nil이면 NewSynthetic()
}

// NewChain wires primary → Cached → Fallback
// ⭐ SSOT: 시장 데이터 체인 조립은 여기서만
// 캐시에는 실데이터만 저장, 합성 대체는 Prices 단위로 전체 종목 교체
func NewChain(primary Provider, opts ChainOptions, log *logger.Logger) Provider {
	var p Provider = NewCached(primary, opts.Cache, opts.CacheTTL, log)
	if !opts.Fallback {
		return p
	}

	synthetic := opts.Synthetic
	if synthetic == nil {
		synthetic = NewSynthetic()
	}
	return NewFallback(p, synthetic, opts.Attempts, opts.Delay, log)
}
