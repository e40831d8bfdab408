package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/pkg/config"
	"github.com/wonny/allocator/pkg/httputil"
	"github.com/wonny/allocator/pkg/logger"
)

// Yahoo fetches data from the Yahoo Finance chart API and quote page
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Yahoo struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	chartURL   string
	quoteURL   string
}

// NewYahoo creates a Yahoo provider
func NewYahoo(httpClient *httputil.Client, cfg config.MarketDataConfig, log *logger.Logger) *Yahoo {
	return &Yahoo{
		httpClient: httpClient,
		logger:     log,
		chartURL:   strings.TrimRight(cfg.ChartBaseURL, "/"),
		quoteURL:   strings.TrimRight(cfg.QuoteBaseURL, "/"),
	}
}

// chartResponse is the v8 chart API payload
// null 값이 섞여 있으므로 포인터 슬라이스 사용
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History implements Provider
func (y *Yahoo) History(ctx context.Context, symbol, period string) (contracts.History, error) {
	p, err := NormalizePeriod(period)
	if err != nil {
		return contracts.History{}, err
	}

	sym := strings.ToUpper(strings.TrimSpace(symbol))
	u := fmt.Sprintf("%s/%s?interval=1d&range=%s&includeAdjustedClose=true", y.chartURL, url.PathEscape(sym), p)

	var chart chartResponse
	if err := y.httpClient.GetJSON(ctx, u, &chart); err != nil {
		return contracts.History{}, fmt.Errorf("yahoo chart %s: %w", sym, err)
	}

	bars, err := parseChart(&chart)
	if err != nil {
		return contracts.History{}, fmt.Errorf("yahoo chart %s: %w", sym, err)
	}

	y.logger.WithFields(map[string]interface{}{
		"symbol": sym,
		"period": p,
		"bars":   len(bars),
	}).Debug("Fetched price history")

	return contracts.History{Symbol: sym, Bars: bars}, nil
}

// parseChart converts a chart payload to bars, preferring adjusted close
func parseChart(chart *chartResponse) ([]contracts.Bar, error) {
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	var closes, volumes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
		volumes = result.Indicators.Quote[0].Volume
	}
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue // 휴장일 등 null 바
		}
		bar := contracts.Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		}
		if i < len(volumes) && volumes[i] != nil {
			bar.Volume = *volumes[i]
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// Fundamentals implements Provider by scraping the quote page
func (y *Yahoo) Fundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	u := fmt.Sprintf("%s/%s/", y.quoteURL, url.PathEscape(sym))

	body, err := y.httpClient.GetBody(ctx, u)
	if err != nil {
		return contracts.Fundamentals{}, fmt.Errorf("yahoo quote %s: %w", sym, err)
	}

	f, err := parseQuotePage(body, sym)
	if err != nil {
		return contracts.Fundamentals{}, fmt.Errorf("yahoo quote %s: %w", sym, err)
	}
	return f, nil
}

// parseQuotePage reads fin-streamer fields for symbol from quote HTML
func parseQuotePage(html []byte, symbol string) (contracts.Fundamentals, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return contracts.Fundamentals{}, fmt.Errorf("parse HTML: %w", err)
	}

	fields := make(map[string]float64)
	doc.Find("fin-streamer[data-field]").Each(func(_ int, s *goquery.Selection) {
		// 페이지에 다른 종목(지수 등) 시세도 섞여 있음
		if sym, ok := s.Attr("data-symbol"); ok && !strings.EqualFold(sym, symbol) {
			return
		}
		field, _ := s.Attr("data-field")
		if _, seen := fields[field]; seen {
			return
		}

		raw, ok := s.Attr("data-value")
		if !ok || strings.TrimSpace(raw) == "" {
			raw = s.Text()
		}
		if v, err := ParseAbbreviated(raw); err == nil {
			fields[field] = v
		}
	})

	f := contracts.Fundamentals{
		MarketCap:    fields["marketCap"],
		AvgVolume:    fields["averageVolume"],
		CurrentPrice: fields["regularMarketPrice"],
	}
	if f.MarketCap == 0 && f.CurrentPrice == 0 {
		return f, ErrNoFundamentals
	}
	return f, nil
}

// ParseAbbreviated parses numbers like "2.95T", "812.4B", "1,234.5", "45.2M"
func ParseAbbreviated(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" || s == "N/A" {
		return 0, fmt.Errorf("empty number")
	}

	multiplier := 1.0
	switch strings.ToUpper(s[len(s)-1:]) {
	case "T":
		multiplier = 1e12
	case "B":
		multiplier = 1e9
	case "M":
		multiplier = 1e6
	case "K":
		multiplier = 1e3
	}
	if multiplier != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v * multiplier, nil
}

// Prices implements Provider
func (y *Yahoo) Prices(ctx context.Context, symbols []string, period string) (*contracts.PriceSeries, error) {
	return fetchAligned(ctx, y.History, symbols, period)
}
