package model

import "time"

// MonitorStatus is a point-in-time view of the monitor, served to status queries.
type MonitorStatus struct {
	Symbol     string     `json:"symbol"`
	Timeframe  string     `json:"timeframe"`
	Thresholds Thresholds `json:"thresholds"`
	LastRSI    RSIValue   `json:"last_rsi"`
	LastTickAt time.Time  `json:"last_tick_at"`
	LastError  string     `json:"last_error,omitempty"`
	Latches    LatchState `json:"latches"`
	Ticks      int        `json:"ticks"`
	Failures   int        `json:"failures"`
	Alerts     int        `json:"alerts"`
	StartedAt  time.Time  `json:"started_at"`
}
