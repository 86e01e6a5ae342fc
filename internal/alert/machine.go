package alert

import (
	"fmt"
	"time"

	"RSISentinel/internal/model"
)

// Machine owns the latch state for one monitored symbol.
// It is not safe for concurrent use; the monitor loop is its only caller.
type Machine struct {
	thresholds model.Thresholds
	hysteresis float64
	state      model.LatchState
}

// NewMachine validates the thresholds and returns a machine with both latches cleared.
func NewMachine(th model.Thresholds, hysteresis float64) (*Machine, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if hysteresis < 0 {
		return nil, fmt.Errorf("hysteresis %.2f must not be negative", hysteresis)
	}
	if th.Overbought-hysteresis <= th.Oversold+hysteresis {
		return nil, fmt.Errorf("hysteresis %.2f closes the band between %.2f and %.2f", hysteresis, th.Oversold, th.Overbought)
	}
	return &Machine{thresholds: th, hysteresis: hysteresis}, nil
}

// Step feeds one reading and returns the alert to send, or nil.
func (m *Machine) Step(rsi model.RSIValue, now time.Time) *model.AlertEvent {
	event, next := Evaluate(rsi, m.thresholds, m.hysteresis, m.state, now)
	m.state = next
	return event
}

// State returns a copy of the current latches.
func (m *Machine) State() model.LatchState { return m.state }

// Thresholds returns the configured thresholds.
func (m *Machine) Thresholds() model.Thresholds { return m.thresholds }

// Reset clears both latches.
func (m *Machine) Reset() { m.state = model.LatchState{} }
