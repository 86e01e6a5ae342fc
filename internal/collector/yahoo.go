package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"RSISentinel/internal/model"
)

// DefaultYahooURL is the chart API root.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
// It is the fallback source for symbols Hyperliquid does not list.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // exchange coin -> Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"BTC": "BTC-USD",
			"ETH": "ETH-USD",
			"SOL": "SOL-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) ticker(symbol string) string {
	if t, ok := f.SymbolMap[symbol]; ok {
		return t
	}
	return symbol
}

// yahooInterval maps an exchange timeframe to the closest chart interval.
func yahooInterval(timeframe string) (string, error) {
	switch timeframe {
	case "1m", "2m", "5m", "15m", "30m", "90m", "1d", "5d":
		return timeframe, nil
	case "1h":
		return "60m", nil
	case "1w":
		return "1wk", nil
	case "1M":
		return "1mo", nil
	default:
		return "", fmt.Errorf("yahoo: unsupported timeframe %q", timeframe)
	}
}

var yahooRanges = []struct {
	span time.Duration
	name string
}{
	{24 * time.Hour, "1d"},
	{5 * 24 * time.Hour, "5d"},
	{30 * 24 * time.Hour, "1mo"},
	{90 * 24 * time.Hour, "3mo"},
	{180 * 24 * time.Hour, "6mo"},
	{365 * 24 * time.Hour, "1y"},
	{2 * 365 * 24 * time.Hour, "2y"},
}

// yahooRange picks the smallest chart range covering span.
func yahooRange(span time.Duration) string {
	for _, r := range yahooRanges {
		if span <= r.span {
			return r.name
		}
	}
	return "max"
}

// chartSeries holds one OHLCV column; gaps arrive as JSON null.
type chartSeries []*float64

func (s chartSeries) at(i int) (float64, bool) {
	if i >= len(s) || s[i] == nil {
		return 0, false
	}
	return *s[i], true
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   chartSeries `json:"open"`
					High   chartSeries `json:"high"`
					Low    chartSeries `json:"low"`
					Close  chartSeries `json:"close"`
					Volume chartSeries `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error) {
	interval, err := yahooInterval(timeframe)
	if err != nil {
		return nil, err
	}
	step, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.ticker(symbol)), interval, yahooRange(time.Duration(limit)*step))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	var chart chartResponse
	if err := doJSON(f.Client, req, "yahoo", &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("yahoo: no data returned")
	}

	res := chart.Chart.Result[0]
	q := res.Indicators.Quote[0]
	bars := make([]model.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closePrice, ok := q.Close.at(i)
		if !ok {
			continue // market gap
		}
		open, _ := q.Open.at(i)
		high, _ := q.High.at(i)
		low, _ := q.Low.at(i)
		vol, _ := q.Volume.at(i)
		bars = append(bars, model.Candle{
			Time:   time.Unix(ts, 0),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: vol,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}
