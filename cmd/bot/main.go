package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RSISentinel/internal/alert"
	"RSISentinel/internal/collector"
	"RSISentinel/internal/config"
	"RSISentinel/internal/metrics"
	"RSISentinel/internal/monitor"
	"RSISentinel/internal/notifier"
	"RSISentinel/internal/recorder"
	"RSISentinel/internal/scheduler"
	"RSISentinel/internal/server"

	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] RSISentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	seeding, _ := cfg.Seeding() // validated above

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewHyperliquidFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s, %s %s, period %d, thresholds %.2f/%.2f",
		fetcher.Name(), cfg.Market.Symbol, cfg.Market.Timeframe, cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought)

	col := collector.NewCollector(fetcher, cfg.Market.Symbol, cfg.Market.Timeframe, cfg.Market.Candles, cfg.RSI.Period+1)

	machine, err := alert.NewMachine(cfg.Thresholds(), cfg.RSI.Hysteresis)
	if err != nil {
		log.Fatalf("[FATAL] init alert machine: %v", err)
	}

	// Init notifiers
	var channels notifier.Multi
	if cfg.EmailEnabled() {
		channels = append(channels, notifier.NewEmailNotifier(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.Sender, cfg.Email.Password, cfg.Email.Recipient))
	}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		channels = append(channels, tn)
	}
	if cfg.Webhook.URL != "" {
		channels = append(channels, notifier.NewWebhookNotifier(cfg.Webhook.URL))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kn := notifier.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kn.Close()
		channels = append(channels, kn)
	}
	var n notifier.Notifier = channels
	if len(channels) == 0 {
		log.Println("[WARN] no alert channel configured, alerts will only be logged")
		n = notifier.NewLogNotifier()
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	met := metrics.NewMetrics()
	mon := monitor.New(monitor.Settings{
		Symbol:    cfg.Market.Symbol,
		Timeframe: cfg.Market.Timeframe,
		Period:    cfg.RSI.Period,
		Seeding:   seeding,
		Recipient: cfg.Email.Recipient,
	}, col, machine, n, rec, met)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, mon, rec)
	if err := sched.Register(cfg.Schedule.IntervalMinutes); err != nil {
		log.Fatalf("[FATAL] register rsi check: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg.Server.Addr, mon, met.Handler()).Run(gctx)
	})

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] running first check now")
		sched.RunNow()
	}
	sched.Start()

	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
		log.Println("[INFO] Telegram polling started")
	}

	log.Printf("[INFO] RSISentinel is running, checking every %d minute(s). Press Ctrl+C to stop.", cfg.Schedule.IntervalMinutes)

	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	log.Println("[INFO] RSISentinel stopped")
}
