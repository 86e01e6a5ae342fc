package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_Independent(t *testing.T) {
	// Separate registries: constructing twice must not panic on duplicate registration.
	a := NewMetrics()
	b := NewMetrics()
	a.TicksTotal.Inc()
	if got := testutil.ToFloat64(b.TicksTotal); got != 0 {
		t.Errorf("metrics leaked between instances: %v", got)
	}
}

func TestSetLatches(t *testing.T) {
	m := NewMetrics()
	m.SetLatches(true, false)
	if got := testutil.ToFloat64(m.LatchArmed.WithLabelValues("overbought")); got != 1 {
		t.Errorf("overbought = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LatchArmed.WithLabelValues("oversold")); got != 0 {
		t.Errorf("oversold = %v, want 0", got)
	}
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.RSI.Set(71.5)
	m.AlertsTotal.WithLabelValues("OVERBOUGHT").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"rsi_value 71.5", `rsi_alerts_total{kind="OVERBOUGHT"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
