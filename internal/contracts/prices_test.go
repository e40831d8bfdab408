package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewPriceSeries(t *testing.T) {
	dates := []time.Time{day(0), day(1)}

	_, err := NewPriceSeries([]string{"A", "B"}, dates, [][]float64{{1, 2}, {1.1, 2.2}})
	assert.NoError(t, err)

	_, err = NewPriceSeries([]string{"A", "B"}, dates, [][]float64{{1, 2}, {1.1}})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewPriceSeries([]string{"A", "B"}, dates, [][]float64{{1, 2}, {0, 2}})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = NewPriceSeries([]string{"A", "A"}, dates, [][]float64{{1, 2}, {1, 2}})
	assert.ErrorIs(t, err, ErrDuplicateSymbol)

	_, err = NewPriceSeries(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestPriceSeries_Returns(t *testing.T) {
	ps, err := NewPriceSeries(
		[]string{"A", "B"},
		[]time.Time{day(0), day(1), day(2)},
		[][]float64{{100, 50}, {110, 50}, {99, 55}},
	)
	require.NoError(t, err)

	r := ps.Returns()
	require.Len(t, r, 2)
	assert.InDelta(t, 0.10, r[0][0], 1e-12)
	assert.InDelta(t, 0.00, r[0][1], 1e-12)
	assert.InDelta(t, -0.10, r[1][0], 1e-12)
	assert.InDelta(t, 0.10, r[1][1], 1e-12)
}

func TestAlignPrices_DropsDatesJointly(t *testing.T) {
	histories := []History{
		{Symbol: "A", Bars: []Bar{{Date: day(0), Close: 10}, {Date: day(1), Close: 11}, {Date: day(2), Close: 12}, {Date: day(3), Close: 13}}},
		// day(1) 누락
		{Symbol: "B", Bars: []Bar{{Date: day(0), Close: 20}, {Date: day(2), Close: 22}, {Date: day(3), Close: 23}}},
	}

	ps, err := AlignPrices(histories)
	require.NoError(t, err)

	assert.Equal(t, 3, ps.Rows())
	assert.Equal(t, []string{"A", "B"}, ps.Symbols)
	assert.Equal(t, [][]float64{{10, 20}, {12, 22}, {13, 23}}, ps.Values)
	assert.True(t, ps.Dates[0].Before(ps.Dates[1]))
}

func TestAlignPrices_NoOverlap(t *testing.T) {
	histories := []History{
		{Symbol: "A", Bars: []Bar{{Date: day(0), Close: 10}}},
		{Symbol: "B", Bars: []Bar{{Date: day(5), Close: 20}}},
	}

	_, err := AlignPrices(histories)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestSimpleReturns(t *testing.T) {
	assert.Nil(t, SimpleReturns([]float64{1}))
	assert.InDeltaSlice(t, []float64{0.5, -0.5}, SimpleReturns([]float64{2, 3, 1.5}), 1e-12)
}
