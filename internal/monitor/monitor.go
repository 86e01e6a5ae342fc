// Package monitor runs one RSI evaluation per tick: fetch, compute, latch, notify, record.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"RSISentinel/internal/alert"
	"RSISentinel/internal/calculator"
	"RSISentinel/internal/collector"
	"RSISentinel/internal/metrics"
	"RSISentinel/internal/model"
	"RSISentinel/internal/notifier"
	"RSISentinel/internal/recorder"
)

// ErrComputationUndefined is returned when the fetched history is too short for the RSI period.
var ErrComputationUndefined = errors.New("rsi undefined for requested period")

// Settings describe what the monitor watches.
type Settings struct {
	Symbol    string
	Timeframe string
	Period    int
	Seeding   calculator.Seeding
	Recipient string
}

// Monitor owns the alert latches and is the only code that mutates them.
type Monitor struct {
	settings  Settings
	collector *collector.Collector
	machine   *alert.Machine
	notifier  notifier.Notifier
	recorder  recorder.Recorder
	metrics   *metrics.Metrics
	now       func() time.Time

	// tickMu keeps ticks strictly sequential.
	tickMu sync.Mutex

	mu     sync.RWMutex
	status model.MonitorStatus
}

// New creates a Monitor. A nil recorder or metrics gets a no-op or private instance.
func New(s Settings, col *collector.Collector, machine *alert.Machine, n notifier.Notifier, rec recorder.Recorder, met *metrics.Metrics) *Monitor {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if met == nil {
		met = metrics.NewMetrics()
	}
	if n == nil {
		n = notifier.NewLogNotifier()
	}
	m := &Monitor{
		settings:  s,
		collector: col,
		machine:   machine,
		notifier:  n,
		recorder:  rec,
		metrics:   met,
		now:       time.Now,
	}
	m.status = model.MonitorStatus{
		Symbol:     s.Symbol,
		Timeframe:  s.Timeframe,
		Thresholds: machine.Thresholds(),
		StartedAt:  m.now(),
	}
	met.SetLatches(false, false)
	return m
}

// Status returns a snapshot safe to read from other goroutines.
func (m *Monitor) Status() model.MonitorStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Tick runs one evaluation. It returns the alert emitted this tick, if any.
// A fetch or computation failure leaves the latches untouched. A delivery failure
// is returned wrapped in notifier.ErrDeliveryFailed together with the event;
// the latch stays armed so the alert is not sent again.
func (m *Monitor) Tick(ctx context.Context) (*model.AlertEvent, error) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	start := m.now()
	wall := time.Now()
	m.metrics.TicksTotal.Inc()
	defer func() { m.metrics.TickDuration.Observe(time.Since(wall).Seconds()) }()

	fetchStart := time.Now()
	closes, err := m.collector.Collect(ctx)
	m.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		reason := "fetch"
		if errors.Is(err, collector.ErrDataUnavailable) {
			reason = "data_unavailable"
		}
		m.fail(start, reason, err)
		return nil, err
	}

	value := calculator.ComputeRSIWith(closes, m.settings.Period, m.settings.Seeding)
	if !value.Defined() {
		err := fmt.Errorf("%w: %d closes, period %d", ErrComputationUndefined, len(closes), m.settings.Period)
		m.fail(start, "undefined", err)
		return nil, err
	}

	// Thresholds apply to the displayed value so alerts never show a reading on the wrong side.
	reading := value.Display()
	event := m.machine.Step(reading, start)
	latches := m.machine.State()
	log.Printf("[INFO] %s %s RSI=%s overbought_armed=%v oversold_armed=%v",
		m.settings.Symbol, m.settings.Timeframe, reading, latches.OverboughtArmed, latches.OversoldArmed)

	rsiFloat, _ := reading.Value()
	m.metrics.RSI.Set(rsiFloat)
	m.metrics.SetLatches(latches.OverboughtArmed, latches.OversoldArmed)

	if err := m.recorder.RecordReading(&recorder.Reading{
		Time:      start,
		Symbol:    m.settings.Symbol,
		Timeframe: m.settings.Timeframe,
		RSI:       reading,
		Close:     closes[len(closes)-1],
		Candles:   len(closes),
		Latches:   latches,
	}); err != nil {
		log.Printf("[ERROR] record reading: %v", err)
	}

	m.mu.Lock()
	m.status.Ticks++
	m.status.LastTickAt = start
	m.status.LastRSI = reading
	m.status.LastError = ""
	m.status.Latches = latches
	if event != nil {
		m.status.Alerts++
	}
	m.mu.Unlock()

	if event == nil {
		return nil, nil
	}
	return event, m.deliver(ctx, event)
}

func (m *Monitor) deliver(ctx context.Context, event *model.AlertEvent) error {
	event.Symbol = m.settings.Symbol
	event.Timeframe = m.settings.Timeframe
	m.metrics.AlertsTotal.WithLabelValues(string(event.Kind)).Inc()
	log.Printf("[INFO] %s alert for %s at RSI=%s", event.Kind, event.Symbol, event.RSI)

	msg := notifier.FormatAlert(event, m.settings.Recipient)
	sendErr := m.notifier.Send(ctx, msg)

	rec := &recorder.AlertRecord{Event: event, Delivered: sendErr == nil}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if err := m.recorder.RecordAlert(rec); err != nil {
		log.Printf("[ERROR] record alert: %v", err)
	}

	if sendErr != nil {
		m.metrics.DeliveryFailures.Inc()
		err := fmt.Errorf("%w: %w", notifier.ErrDeliveryFailed, sendErr)
		log.Printf("[ERROR] %v", err)
		m.mu.Lock()
		m.status.LastError = err.Error()
		m.mu.Unlock()
		return err
	}
	log.Printf("[INFO] alert sent via %s: %s", m.notifier.Name(), msg.Subject)
	return nil
}

func (m *Monitor) fail(at time.Time, reason string, err error) {
	m.metrics.TickFailures.WithLabelValues(reason).Inc()
	log.Printf("[WARN] skipping tick (%s): %v", reason, err)

	m.mu.Lock()
	m.status.Ticks++
	m.status.Failures++
	m.status.LastTickAt = at
	m.status.LastError = err.Error()
	m.mu.Unlock()
}
