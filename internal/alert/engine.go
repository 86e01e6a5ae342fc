// Package alert turns RSI readings into one-shot threshold alerts.
package alert

import (
	"time"

	"RSISentinel/internal/model"
)

// Evaluate applies one tick of the latch rules and returns the alert to emit, if any,
// together with the next latch state. The input state is never modified.
//
// Hysteresis widens the band a reading must re-enter before a latch clears:
// the overbought latch clears below overbought-hysteresis and the oversold latch
// above oversold+hysteresis. Zero hysteresis clears on any reading past the threshold.
//
// If the thresholds overlap (oversold >= overbought, rejected by Thresholds.Validate),
// a reading inside both zones is treated as overbought only: the oversold rule is
// skipped, so it neither fires nor disarms the overbought latch.
func Evaluate(rsi model.RSIValue, th model.Thresholds, hysteresis float64, state model.LatchState, now time.Time) (*model.AlertEvent, model.LatchState) {
	v, ok := rsi.Value()
	if !ok {
		return nil, state
	}

	var event *model.AlertEvent
	next := state

	if v >= th.Overbought {
		if !next.OverboughtArmed {
			event = &model.AlertEvent{Kind: model.AlertOverbought, RSI: rsi, Threshold: th.Overbought, Time: now}
			next.OverboughtArmed = true
			next.OversoldArmed = false
		}
	} else if v < th.Overbought-hysteresis {
		next.OverboughtArmed = false
	}

	// Overlapping thresholds: overbought wins outright.
	if v <= th.Oversold && v < th.Overbought {
		if !next.OversoldArmed {
			event = &model.AlertEvent{Kind: model.AlertOversold, RSI: rsi, Threshold: th.Oversold, Time: now}
			next.OversoldArmed = true
			next.OverboughtArmed = false
		}
	} else if v > th.Oversold+hysteresis {
		next.OversoldArmed = false
	}

	return event, next
}
