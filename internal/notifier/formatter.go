package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"RSISentinel/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatAlert renders an alert event into an email-style message.
func FormatAlert(ev *model.AlertEvent, recipient string) Message {
	var status, outlook string
	switch ev.Kind {
	case model.AlertOverbought:
		status = fmt.Sprintf("Overbought (Above %g)", ev.Threshold)
		outlook = "This indicates potential selling pressure and a possible price reversal."
	case model.AlertOversold:
		status = fmt.Sprintf("Oversold (Below %g)", ev.Threshold)
		outlook = "This indicates potential buying pressure and a possible price reversal."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 %s RSI ALERT - %s 🚨\n\n", ev.Symbol, ev.Kind))
	b.WriteString(fmt.Sprintf("Current RSI: %s\n", ev.RSI))
	if ev.Timeframe != "" {
		b.WriteString(fmt.Sprintf("Timeframe: %s\n", ev.Timeframe))
	}
	b.WriteString(fmt.Sprintf("Time: %s\n", ev.Time.Format(timeLayout)))
	b.WriteString(fmt.Sprintf("Status: %s\n\n", status))
	b.WriteString(outlook + "\n")

	return Message{
		Subject:   fmt.Sprintf("%s RSI Alert - %s", ev.Symbol, ev.Time.Format(timeLayout)),
		Body:      b.String(),
		Recipient: recipient,
		Event:     ev,
	}
}

// FormatStatus formats the monitor status for a chat reply.
func FormatStatus(st *model.MonitorStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s %s RSI</b>\n\n", st.Symbol, st.Timeframe))
	b.WriteString(fmt.Sprintf("RSI: %s\n", st.LastRSI))
	b.WriteString(fmt.Sprintf("Thresholds: %g / %g\n", st.Thresholds.Oversold, st.Thresholds.Overbought))
	b.WriteString(fmt.Sprintf("Overbought armed: %v\n", st.Latches.OverboughtArmed))
	b.WriteString(fmt.Sprintf("Oversold armed: %v\n", st.Latches.OversoldArmed))
	b.WriteString(fmt.Sprintf("Ticks: %d (failed %d) | Alerts: %d\n", st.Ticks, st.Failures, st.Alerts))
	if !st.LastTickAt.IsZero() {
		b.WriteString(fmt.Sprintf("Last check: %s\n", st.LastTickAt.Format(timeLayout)))
	}
	if st.LastError != "" {
		b.WriteString(fmt.Sprintf("Last error: %s\n", html.EscapeString(st.LastError)))
	}
	b.WriteString(fmt.Sprintf("Up since: %s (%s)\n", st.StartedAt.Format(timeLayout),
		time.Since(st.StartedAt).Truncate(time.Second)))
	return b.String()
}
