package recorder

import (
	"time"

	"RSISentinel/internal/model"
)

// Reading is one successful RSI evaluation.
type Reading struct {
	Time      time.Time
	Symbol    string
	Timeframe string
	RSI       model.RSIValue
	Close     float64
	Candles   int
	Latches   model.LatchState
}

// AlertRecord is one emitted alert and the outcome of its delivery.
type AlertRecord struct {
	Event     *model.AlertEvent
	Delivered bool
	Error     string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordReading(r *Reading) error
	RecordAlert(a *AlertRecord) error
	// RecentAlerts returns up to limit alerts, newest first.
	RecentAlerts(limit int) ([]AlertRecord, error)
	Close() error
}
