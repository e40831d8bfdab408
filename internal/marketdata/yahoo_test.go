package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocator/pkg/config"
	"github.com/wonny/allocator/pkg/httputil"
	"github.com/wonny/allocator/pkg/logger"
)

const sampleChart = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "regularMarketPrice": 192.5},
      "timestamp": [1704412800, 1704240000, 1704326400, 1704499200],
      "indicators": {
        "quote": [{
          "close":  [184.0, 185.6, null, 181.2],
          "volume": [58000000, 62000000, null, 71000000]
        }],
        "adjclose": [{
          "adjclose": [183.5, 185.1, null, 180.7]
        }]
      }
    }],
    "error": null
  }
}`

const sampleQuote = `
<html><body>
  <fin-streamer data-symbol="^GSPC" data-field="regularMarketPrice" data-value="4780.2">4,780.20</fin-streamer>
  <fin-streamer data-symbol="AAPL" data-field="regularMarketPrice" data-value="192.53">192.53</fin-streamer>
  <table>
    <tr><td>Market Cap</td><td><fin-streamer data-symbol="AAPL" data-field="marketCap">2.95T</fin-streamer></td></tr>
    <tr><td>Avg. Volume</td><td><fin-streamer data-symbol="AAPL" data-field="averageVolume" data-value="">54,321,000</fin-streamer></td></tr>
  </table>
</body></html>`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *Yahoo {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{MarketData: config.MarketDataConfig{
		ChartBaseURL: server.URL + "/v8/finance/chart",
		QuoteBaseURL: server.URL + "/quote",
		Timeout:      5 * time.Second,
		RatePerSec:   100,
	}}
	client := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewYahoo(client, cfg.MarketData, logger.NewNop())
}

func TestYahoo_History(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(sampleChart))
	})

	h, err := y.History(context.Background(), "aapl", "1y")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", h.Symbol)
	require.Equal(t, 3, h.Len(), "null bar is skipped")

	// 날짜순 정렬 + 수정주가 사용
	assert.True(t, h.Bars[0].Date.Before(h.Bars[1].Date))
	assert.Equal(t, []float64{185.1, 183.5, 180.7}, h.Closes())
	assert.Equal(t, []float64{62000000, 58000000, 71000000}, h.Volumes())
}

func TestYahoo_HistoryAPIError(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := y.History(context.Background(), "ZZZZ", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahoo_HistoryRejectsPeriod(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := y.History(context.Background(), "AAPL", "3y")
	assert.ErrorIs(t, err, ErrUnsupportedPeriod)
}

func TestYahoo_Fundamentals(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/quote/AAPL"))
		_, _ = w.Write([]byte(sampleQuote))
	})

	f, err := y.Fundamentals(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.InDelta(t, 2.95e12, f.MarketCap, 1)
	assert.InDelta(t, 54321000, f.AvgVolume, 1e-6)
	assert.InDelta(t, 192.53, f.CurrentPrice, 1e-9)
}

func TestYahoo_FundamentalsMissing(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>consent required</body></html>`))
	})

	_, err := y.Fundamentals(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, ErrNoFundamentals))
}

func TestYahoo_Prices(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleChart))
	})

	ps, err := y.Prices(context.Background(), []string{"AAPL", "MSFT"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, ps.Symbols)
	assert.Equal(t, 3, ps.Rows())
}

func TestParseAbbreviated(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2.95T", 2.95e12, false},
		{"812.4B", 812.4e9, false},
		{"45.2M", 45.2e6, false},
		{"12k", 12e3, false},
		{"1,234.5", 1234.5, false},
		{"N/A", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAbbreviated(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.want*1e-12)
		})
	}
}
