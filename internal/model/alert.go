package model

import (
	"fmt"
	"time"
)

// AlertKind identifies which threshold an alert crossed.
type AlertKind string

const (
	AlertOverbought AlertKind = "OVERBOUGHT"
	AlertOversold   AlertKind = "OVERSOLD"
)

// Thresholds bound the RSI range. Oversold must stay strictly below Overbought.
type Thresholds struct {
	Overbought float64 `json:"overbought"`
	Oversold   float64 `json:"oversold"`
}

// Validate checks the threshold invariant. It is meant to run once at startup.
func (t Thresholds) Validate() error {
	if t.Overbought < 0 || t.Overbought > 100 {
		return fmt.Errorf("overbought threshold %.2f outside [0, 100]", t.Overbought)
	}
	if t.Oversold < 0 || t.Oversold > 100 {
		return fmt.Errorf("oversold threshold %.2f outside [0, 100]", t.Oversold)
	}
	if t.Oversold >= t.Overbought {
		return fmt.Errorf("oversold threshold %.2f must be below overbought %.2f", t.Oversold, t.Overbought)
	}
	return nil
}

// LatchState holds the two alert latches kept across ticks.
type LatchState struct {
	OverboughtArmed bool `json:"overbought_armed"`
	OversoldArmed   bool `json:"oversold_armed"`
}

// AlertEvent is emitted when the RSI newly crosses a threshold.
type AlertEvent struct {
	Kind      AlertKind
	RSI       RSIValue
	Threshold float64
	Symbol    string
	Timeframe string
	Time      time.Time
}
