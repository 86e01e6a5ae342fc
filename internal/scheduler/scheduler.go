package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"RSISentinel/internal/model"
	"RSISentinel/internal/notifier"
	"RSISentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Ticker is the evaluation the scheduler drives.
type Ticker interface {
	Tick(ctx context.Context) (*model.AlertEvent, error)
	Status() model.MonitorStatus
}

// Scheduler runs the monitor on a fixed interval.
type Scheduler struct {
	Cron     *cron.Cron
	Monitor  Ticker
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Overlapping runs are skipped so ticks stay sequential.
func NewScheduler(ctx context.Context, mon Ticker, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		Monitor:  mon,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// IntervalSpec builds the cron spec for a check every n minutes.
func IntervalSpec(minutes int) string {
	return fmt.Sprintf("@every %dm", minutes)
}

// Register schedules the RSI check every intervalMinutes.
func (s *Scheduler) Register(intervalMinutes int) error {
	if intervalMinutes <= 0 {
		return fmt.Errorf("check interval must be positive, got %d", intervalMinutes)
	}
	if _, err := s.Cron.AddFunc(IntervalSpec(intervalMinutes), s.checkTask); err != nil {
		return fmt.Errorf("register rsi check: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a check immediately (startup run and manual trigger).
func (s *Scheduler) RunNow() {
	s.checkTask()
}

func (s *Scheduler) checkTask() {
	if s.Ctx.Err() != nil {
		return
	}
	// Errors are logged by the monitor; a failed tick retries on the next schedule.
	s.Monitor.Tick(s.Ctx)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	cmd := strings.ToLower(strings.TrimSpace(command))
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // "/status@MyBot" in group chats
	}
	switch cmd {
	case "/status", "/rsi":
		st := s.Monitor.Status()
		return notifier.FormatStatus(&st)
	case "/check":
		ev, err := s.Monitor.Tick(s.Ctx)
		switch {
		case err != nil && ev == nil:
			return fmt.Sprintf("❌ check failed: %v", err)
		case ev != nil:
			return fmt.Sprintf("🚨 %s alert at RSI %s", ev.Kind, ev.RSI)
		default:
			st := s.Monitor.Status()
			return fmt.Sprintf("✅ RSI %s, no new alert", st.LastRSI)
		}
	case "/alerts":
		return s.formatRecentAlerts(5)
	default:
		return "Available commands:\n• /status\n• /check\n• /alerts"
	}
}

func (s *Scheduler) formatRecentAlerts(limit int) string {
	alerts, err := s.Recorder.RecentAlerts(limit)
	if err != nil {
		log.Printf("[ERROR] load recent alerts: %v", err)
		return "❌ could not load alert history"
	}
	if len(alerts) == 0 {
		return "No alerts recorded."
	}
	var b strings.Builder
	b.WriteString("🕑 <b>Recent alerts</b>\n\n")
	for _, a := range alerts {
		mark := "✅"
		if !a.Delivered {
			mark = "⚠️"
		}
		b.WriteString(fmt.Sprintf("%s %s %s RSI %s\n", mark,
			a.Event.Time.Format("2006-01-02 15:04"), a.Event.Kind, a.Event.RSI))
	}
	return b.String()
}
