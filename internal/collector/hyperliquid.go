package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"RSISentinel/internal/model"
)

// DefaultHyperliquidURL is the public info endpoint.
const DefaultHyperliquidURL = "https://api.hyperliquid.xyz/info"

// HyperliquidFetcher implements Fetcher using the Hyperliquid info API.
type HyperliquidFetcher struct {
	BaseURL string
	Client  *http.Client
	Now     func() time.Time
}

// NewHyperliquidFetcher creates a new fetcher with optional proxy support.
func NewHyperliquidFetcher(baseURL, proxyURL string) *HyperliquidFetcher {
	if baseURL == "" {
		baseURL = DefaultHyperliquidURL
	}
	return &HyperliquidFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func (f *HyperliquidFetcher) Name() string { return "hyperliquid" }

type candleSnapshotRequest struct {
	Type string             `json:"type"`
	Req  candleSnapshotBody `json:"req"`
}

type candleSnapshotBody struct {
	Coin      string `json:"coin"`
	Interval  string `json:"interval"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// hlCandle is the JSON shape of one candle; prices arrive as decimal strings.
type hlCandle struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
}

func (f *HyperliquidFetcher) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error) {
	interval, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	start, end := candleWindow(f.Now(), interval, limit)

	payload, err := json.Marshal(candleSnapshotRequest{
		Type: "candleSnapshot",
		Req: candleSnapshotBody{
			Coin:      symbol,
			Interval:  timeframe,
			StartTime: start.UnixMilli(),
			EndTime:   end.UnixMilli(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var raw []hlCandle
	if err := doJSON(f.Client, req, "hyperliquid", &raw); err != nil {
		return nil, err
	}

	bars := make([]model.Candle, 0, len(raw))
	for _, c := range raw {
		bar, err := c.toCandle()
		if err != nil {
			return nil, fmt.Errorf("decode candle at %d: %w", c.OpenTime, err)
		}
		bars = append(bars, bar)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (c hlCandle) toCandle() (model.Candle, error) {
	var vals [5]float64
	for i, s := range []string{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if s == "" {
			if i == 4 {
				continue
			}
			return model.Candle{}, errors.New("missing price field")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, err
		}
		vals[i] = v
	}
	return model.Candle{
		Time:   time.UnixMilli(c.OpenTime),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
