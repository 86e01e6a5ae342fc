package model

import "time"

// Candle represents a single candlestick bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ordered, chronological sequence of closing prices.
type PriceSeries []float64

// Closes extracts the closing prices of bars in order.
func Closes(bars []Candle) PriceSeries {
	closes := make(PriceSeries, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
