package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RSISentinel/internal/model"
)

// ErrDataUnavailable is returned when the data source yields too few candles to evaluate.
var ErrDataUnavailable = errors.New("price data unavailable")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.Candle
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_ context.Context, _, timeframe string, limit int) ([]model.Candle, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	step, err := ParseTimeframe(timeframe)
	if err != nil {
		step = time.Minute
	}
	return generateMockBars(m.Price, limit, step), nil
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.Candle {
	bars := make([]model.Candle, count)
	now := time.Now().Truncate(step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Candle{
			Time:   now.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches the closing price series for one symbol and timeframe.
type Collector struct {
	Fetcher   Fetcher
	Symbol    string
	Timeframe string
	Limit     int
	// MinLen is the shortest series worth evaluating, normally period+1.
	MinLen int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, timeframe string, limit, minLen int) *Collector {
	return &Collector{
		Fetcher:   fetcher,
		Symbol:    symbol,
		Timeframe: timeframe,
		Limit:     limit,
		MinLen:    minLen,
	}
}

// Collect fetches candles and returns their closes. A short or empty result wraps ErrDataUnavailable.
func (c *Collector) Collect(ctx context.Context) (model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchCandles(ctx, c.Symbol, c.Timeframe, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s candles from %s: %w", c.Symbol, c.Timeframe, c.Fetcher.Name(), err)
	}
	if len(bars) == 0 || len(bars) < c.MinLen {
		return nil, fmt.Errorf("%w: got %d candles for %s %s, need %d",
			ErrDataUnavailable, len(bars), c.Symbol, c.Timeframe, c.MinLen)
	}
	return model.Closes(bars), nil
}
