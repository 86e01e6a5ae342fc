package calculator

import (
	"fmt"
	"math"
	"strings"

	"RSISentinel/internal/model"
)

// Seeding selects how the exponential smoothing of gains and losses starts.
type Seeding int

const (
	// SeedRecursive smooths from the first delta using bias-corrected weights,
	// so every point is the weighted mean sum((1-a)^k * x[t-k]) / sum((1-a)^k).
	// This matches the RSI shown by common charting platforms.
	SeedRecursive Seeding = iota
	// SeedSMA seeds with the simple average of the first period deltas and
	// then applies Wilder's recursion avg = (avg*(period-1) + x) / period.
	SeedSMA
)

// DefaultPeriod is the classic RSI lookback.
const DefaultPeriod = 14

func (s Seeding) String() string {
	switch s {
	case SeedRecursive:
		return "recursive"
	case SeedSMA:
		return "sma"
	default:
		return fmt.Sprintf("Seeding(%d)", int(s))
	}
}

// ParseSeeding maps a configuration string to a Seeding.
func ParseSeeding(s string) (Seeding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recursive", "ewm", "tradingview":
		return SeedRecursive, nil
	case "sma", "wilder":
		return SeedSMA, nil
	default:
		return 0, fmt.Errorf("unknown rsi seeding %q", s)
	}
}

// ComputeRSI returns the RSI at the most recent price using the default seeding.
// The result is undefined when len(prices) < period+1.
func ComputeRSI(prices model.PriceSeries, period int) model.RSIValue {
	return ComputeRSIWith(prices, period, SeedRecursive)
}

// ComputeRSIWith is ComputeRSI with an explicit seeding rule.
func ComputeRSIWith(prices model.PriceSeries, period int, seeding Seeding) model.RSIValue {
	series := RSISeries(prices, period, seeding)
	if len(series) == 0 {
		return model.UndefinedRSI
	}
	return series[len(series)-1]
}

// RSISeries computes the full smoothed RSI path, one value per price.
// Index 0 is always undefined; with SeedSMA indices below period are undefined too.
// A series shorter than period+1 yields nil.
func RSISeries(prices model.PriceSeries, period int, seeding Seeding) []model.RSIValue {
	if period < 1 || len(prices) < period+1 {
		return nil
	}

	out := make([]model.RSIValue, len(prices))
	out[0] = model.UndefinedRSI

	switch seeding {
	case SeedSMA:
		smoothSMA(prices, period, out)
	default:
		smoothRecursive(prices, period, out)
	}
	return out
}

func smoothRecursive(prices model.PriceSeries, period int, out []model.RSIValue) {
	decay := 1 - 1/float64(period)

	// Weighted sums and the running weight total give the bias-corrected mean.
	var gainNum, lossNum, weight float64
	for i := 1; i < len(prices); i++ {
		gain, loss := split(prices[i] - prices[i-1])
		gainNum = gain + decay*gainNum
		lossNum = loss + decay*lossNum
		weight = 1 + decay*weight
		out[i] = rsiFrom(gainNum/weight, lossNum/weight)
	}
}

func smoothSMA(prices model.PriceSeries, period int, out []model.RSIValue) {
	p := float64(period)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(prices[i] - prices[i-1])
		avgGain += gain
		avgLoss += loss
		if i < period {
			out[i] = model.UndefinedRSI
		}
	}
	avgGain /= p
	avgLoss /= p
	out[period] = rsiFrom(avgGain, avgLoss)

	for i := period + 1; i < len(prices); i++ {
		gain, loss := split(prices[i] - prices[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiFrom(avgGain, avgLoss)
	}
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

// rsiFrom applies the zero policy: no gain reads 0 (including the flat case
// where loss is zero too), no loss with some gain reads 100.
func rsiFrom(avgGain, avgLoss float64) model.RSIValue {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return model.UndefinedRSI
	}
	if avgGain == 0 {
		return model.NewRSIValue(0)
	}
	if avgLoss == 0 {
		return model.NewRSIValue(100)
	}
	rs := avgGain / avgLoss
	return model.NewRSIValue(100 - 100/(1+rs))
}
