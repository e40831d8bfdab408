package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)

func TestSynthetic_Reproducible(t *testing.T) {
	s := NewSyntheticAt(anchor)

	a, err := s.History(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	b, err := s.History(context.Background(), "aapl", "1y")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 150.0, a.Bars[0].Close, "known symbols start at their base price")
}

func TestSynthetic_BusinessDaysAndFloor(t *testing.T) {
	s := NewSyntheticAt(anchor)

	h, err := s.History(context.Background(), "UNKNOWN", "2y")
	require.NoError(t, err)

	// 2년 ≈ 522 영업일
	assert.InDelta(t, 522, h.Len(), 3)
	for _, b := range h.Bars {
		assert.NotEqual(t, time.Saturday, b.Date.Weekday())
		assert.NotEqual(t, time.Sunday, b.Date.Weekday())
		assert.GreaterOrEqual(t, b.Close, 1.0)
		assert.Greater(t, b.Volume, 0.0)
	}
}

func TestSynthetic_SymbolsDiffer(t *testing.T) {
	s := NewSyntheticAt(anchor)

	ps, err := s.Prices(context.Background(), []string{"AAPL", "MSFT", "KO"}, "6mo")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, ps.Rows(), MinRows)
	assert.NotEqual(t, mustColumn(t, ps, "AAPL"), mustColumn(t, ps, "MSFT"))
}

func TestSynthetic_Fundamentals(t *testing.T) {
	s := NewSyntheticAt(anchor)

	f, err := s.Fundamentals(context.Background(), "MSFT")
	require.NoError(t, err)

	assert.Greater(t, f.MarketCap, 0.0)
	assert.Greater(t, f.AvgVolume, 2e6-1)
	assert.InDelta(t, f.MarketCap/syntheticShares, f.CurrentPrice, 1e-6)
}

func TestNormalizePeriod(t *testing.T) {
	p, err := NormalizePeriod("")
	require.NoError(t, err)
	assert.Equal(t, "2y", p)

	p, err = NormalizePeriod("YTD")
	require.NoError(t, err)
	assert.Equal(t, "ytd", p)

	_, err = NormalizePeriod("1w")
	assert.ErrorIs(t, err, ErrUnsupportedPeriod)

	start, err := PeriodStart("ytd", anchor)
	require.NoError(t, err)
	assert.Equal(t, time.January, start.Month())
	assert.Equal(t, 1, start.Day())
}
