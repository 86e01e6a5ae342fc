package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"RSISentinel/internal/model"
	"RSISentinel/internal/recorder"
)

type fakeTicker struct {
	mu     sync.Mutex
	calls  int
	event  *model.AlertEvent
	err    error
	status model.MonitorStatus
}

func (f *fakeTicker) Tick(context.Context) (*model.AlertEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.event, f.err
}

func (f *fakeTicker) Status() model.MonitorStatus { return f.status }

func (f *fakeTicker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type historyRecorder struct {
	recorder.NoopRecorder
	alerts []recorder.AlertRecord
}

func (h *historyRecorder) RecentAlerts(limit int) ([]recorder.AlertRecord, error) {
	if len(h.alerts) > limit {
		return h.alerts[:limit], nil
	}
	return h.alerts, nil
}

func TestIntervalSpec(t *testing.T) {
	if got := IntervalSpec(5); got != "@every 5m" {
		t.Errorf("IntervalSpec(5) = %q", got)
	}
}

func TestRegister_RejectsNonPositive(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeTicker{}, nil)
	if err := s.Register(0); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if err := s.Register(1); err != nil {
		t.Fatalf("Register(1): %v", err)
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected 1 cron entry, got %d", n)
	}
}

func TestRunNow(t *testing.T) {
	ft := &fakeTicker{err: errors.New("upstream down")}
	s := NewScheduler(context.Background(), ft, nil)
	s.RunNow()
	if ft.Calls() != 1 {
		t.Errorf("expected 1 tick, got %d", ft.Calls())
	}
}

func TestRunNow_SkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ft := &fakeTicker{}
	NewScheduler(ctx, ft, nil).RunNow()
	if ft.Calls() != 0 {
		t.Errorf("expected no tick after cancel, got %d", ft.Calls())
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeTicker{}, nil)
	if err := s.Register(1); err != nil {
		t.Fatal(err)
	}
	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestHandleCommand(t *testing.T) {
	ft := &fakeTicker{status: model.MonitorStatus{
		Symbol: "BTC", Timeframe: "5m", LastRSI: model.NewRSIValue(44.444), StartedAt: time.Now(),
	}}
	hist := &historyRecorder{alerts: []recorder.AlertRecord{{
		Event: &model.AlertEvent{
			Kind: model.AlertOversold, RSI: model.NewRSIValue(25), Time: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		},
	}}}
	s := NewScheduler(context.Background(), ft, hist)

	if out := s.HandleCommand("/status@RSIBot"); !strings.Contains(out, "RSI: 44.44") {
		t.Errorf("/status reply = %q", out)
	}
	if out := s.HandleCommand("/check"); !strings.Contains(out, "no new alert") {
		t.Errorf("/check reply = %q", out)
	}
	ft.event = &model.AlertEvent{Kind: model.AlertOverbought, RSI: model.NewRSIValue(70)}
	if out := s.HandleCommand("/check"); !strings.Contains(out, "OVERBOUGHT alert at RSI 70.00") {
		t.Errorf("/check alert reply = %q", out)
	}
	ft.event, ft.err = nil, errors.New("boom")
	if out := s.HandleCommand("/check"); !strings.Contains(out, "check failed: boom") {
		t.Errorf("/check failure reply = %q", out)
	}
	if out := s.HandleCommand("/alerts"); !strings.Contains(out, "⚠️ 2024-05-01 09:30 OVERSOLD RSI 25.00") {
		t.Errorf("/alerts reply = %q", out)
	}
	if out := s.HandleCommand("hello"); !strings.Contains(out, "/status") {
		t.Errorf("help reply = %q", out)
	}
}
