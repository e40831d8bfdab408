package contracts

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrEmptySeries     = errors.New("price series is empty")
	ErrShapeMismatch   = errors.New("price series shape mismatch")
	ErrInvalidPrice    = errors.New("price must be positive and finite")
	ErrUnknownSymbol   = errors.New("symbol not in price series")
	ErrDuplicateSymbol = errors.New("duplicate symbol in price series")
)

// Bar is one daily observation for a single symbol
type Bar struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"` // 수정주가
	Volume float64   `json:"volume"`
}

// History is a single symbol's daily bars ordered by date
type History struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (h History) Len() int {
	return len(h.Bars)
}

// Closes returns close prices in date order
func (h History) Closes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns volumes in date order
func (h History) Volumes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Volume
	}
	return out
}

// PriceSeries holds aligned daily prices for several symbols
// ⭐ 불변조건: 모든 종목이 동일한 날짜 인덱스를 공유
// Values[row][col], col 순서는 Symbols 순서
type PriceSeries struct {
	Symbols []string    `json:"symbols"`
	Dates   []time.Time `json:"dates"`
	Values  [][]float64 `json:"values"`
}

// NewPriceSeries builds a PriceSeries after checking shape and values
func NewPriceSeries(symbols []string, dates []time.Time, values [][]float64) (*PriceSeries, error) {
	if len(symbols) == 0 || len(values) == 0 {
		return nil, ErrEmptySeries
	}
	if len(dates) != len(values) {
		return nil, fmt.Errorf("%w: %d dates, %d rows", ErrShapeMismatch, len(dates), len(values))
	}

	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, s)
		}
		seen[s] = struct{}{}
	}

	for i, row := range values {
		if len(row) != len(symbols) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(row), len(symbols))
		}
		for j, v := range row {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s row %d = %v", ErrInvalidPrice, symbols[j], i, v)
			}
		}
	}

	return &PriceSeries{Symbols: symbols, Dates: dates, Values: values}, nil
}

// Rows returns the number of aligned dates
func (p *PriceSeries) Rows() int {
	return len(p.Values)
}

// Index returns the column of symbol, or -1
func (p *PriceSeries) Index(symbol string) int {
	for i, s := range p.Symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

// Returns computes simple daily returns row-wise; the first row is dropped
func (p *PriceSeries) Returns() [][]float64 {
	if len(p.Values) < 2 {
		return nil
	}
	out := make([][]float64, len(p.Values)-1)
	for i := 1; i < len(p.Values); i++ {
		prev, cur := p.Values[i-1], p.Values[i]
		row := make([]float64, len(cur))
		for j := range cur {
			row[j] = cur[j]/prev[j] - 1
		}
		out[i-1] = row
	}
	return out
}

// SimpleReturns computes pct-change of a single price column
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, prices[i]/prices[i-1]-1)
	}
	return out
}

// AlignPrices joins histories on their common trading days
// 한 종목이라도 값이 없는 날짜는 전체에서 제외 (종목별 개별 제거 금지)
func AlignPrices(histories []History) (*PriceSeries, error) {
	if len(histories) == 0 {
		return nil, ErrEmptySeries
	}

	type cell struct {
		date  time.Time
		price float64
	}
	byDay := make([]map[string]cell, len(histories))
	symbols := make([]string, len(histories))

	for k, h := range histories {
		symbols[k] = h.Symbol
		m := make(map[string]cell, len(h.Bars))
		for _, b := range h.Bars {
			if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
				continue
			}
			m[dayKey(b.Date)] = cell{date: b.Date, price: b.Close}
		}
		byDay[k] = m
	}

	common := make([]string, 0, len(byDay[0]))
	for day := range byDay[0] {
		inAll := true
		for k := 1; k < len(byDay); k++ {
			if _, ok := byDay[k][day]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, day)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("%w: no common trading days", ErrEmptySeries)
	}
	sort.Strings(common)

	dates := make([]time.Time, len(common))
	values := make([][]float64, len(common))
	for i, day := range common {
		dates[i] = byDay[0][day].date
		row := make([]float64, len(byDay))
		for k := range byDay {
			row[k] = byDay[k][day].price
		}
		values[i] = row
	}

	return NewPriceSeries(symbols, dates, values)
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
