package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"RSISentinel/internal/calculator"
	"RSISentinel/internal/collector"
	"RSISentinel/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Market struct {
		Symbol    string `yaml:"symbol"`
		Timeframe string `yaml:"timeframe"`
		Candles   int    `yaml:"candles"`
	} `yaml:"market"`
	DataSource struct {
		Provider string `yaml:"provider"` // hyperliquid | yahoo | mock
		BaseURL  string `yaml:"base_url"`
	} `yaml:"data_source"`
	RSI struct {
		Period     int     `yaml:"period"`
		Overbought float64 `yaml:"overbought"`
		Oversold   float64 `yaml:"oversold"`
		Hysteresis float64 `yaml:"hysteresis"`
		Seeding    string  `yaml:"seeding"`
	} `yaml:"rsi"`
	Schedule struct {
		IntervalMinutes int  `yaml:"interval_minutes"`
		RunOnStart      bool `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Email struct {
		Sender    string `yaml:"sender"`
		Password  string `yaml:"password"`
		Recipient string `yaml:"recipient"`
		SMTPHost  string `yaml:"smtp_host"`
		SMTPPort  string `yaml:"smtp_port"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Webhook struct {
		URL string `yaml:"url"`
	} `yaml:"webhook"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Defaults first so keys present in the file or environment, zero included, win.
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.DataSource.BaseURL == "" && cfg.DataSource.Provider == "hyperliquid" {
		cfg.DataSource.BaseURL = collector.DefaultHyperliquidURL
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SYMBOL":              &c.Market.Symbol,
		"TIMEFRAME":           &c.Market.Timeframe,
		"DATA_SOURCE":         &c.DataSource.Provider,
		"HYPERLIQUID_API_URL": &c.DataSource.BaseURL,
		"RSI_SEEDING":         &c.RSI.Seeding,
		"EMAIL_SENDER":        &c.Email.Sender,
		"EMAIL_PASSWORD":      &c.Email.Password,
		"EMAIL_RECIPIENT":     &c.Email.Recipient,
		"SMTP_HOST":           &c.Email.SMTPHost,
		"SMTP_PORT":           &c.Email.SMTPPort,
		"TELEGRAM_BOT_TOKEN":  &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":    &c.Telegram.ChatID,
		"WEBHOOK_URL":         &c.Webhook.URL,
		"KAFKA_TOPIC":         &c.Kafka.Topic,
		"HTTP_ADDR":           &c.Server.Addr,
		"SQLITE_PATH":         &c.Database.SQLitePath,
		"HTTPS_PROXY":         &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if os.Getenv("HTTP_ADDR") == "" {
		if v := os.Getenv("PORT"); v != "" {
			c.Server.Addr = ":" + v
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	ints := map[string]*int{
		"CANDLE_COUNT":   &c.Market.Candles,
		"RSI_PERIOD":     &c.RSI.Period,
		"CHECK_INTERVAL": &c.Schedule.IntervalMinutes,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"RSI_OVERBOUGHT": &c.RSI.Overbought,
		"RSI_OVERSOLD":   &c.RSI.Oversold,
		"RSI_HYSTERESIS": &c.RSI.Hysteresis,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = f
		}
	}

	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	return nil
}

// applyDefaults fills every key with its default. Load calls it before
// decoding, so it must only run on a fresh Config.
func (c *Config) applyDefaults() {
	c.Market.Symbol = "BTC"
	c.Market.Timeframe = "5m"
	c.Market.Candles = 500
	c.DataSource.Provider = "hyperliquid"
	c.RSI.Period = calculator.DefaultPeriod
	c.RSI.Overbought = 68
	c.RSI.Oversold = 32
	c.Schedule.IntervalMinutes = 1
	c.Schedule.RunOnStart = true
	c.Email.SMTPHost = "smtp.gmail.com"
	c.Email.SMTPPort = "465"
	c.Kafka.Topic = "rsi-alerts"
	c.Server.Addr = ":8000"
	c.Database.SQLitePath = "data/rsi_sentinel.db"
}

// Thresholds returns the configured alert thresholds.
func (c *Config) Thresholds() model.Thresholds {
	return model.Thresholds{Overbought: c.RSI.Overbought, Oversold: c.RSI.Oversold}
}

// Seeding returns the parsed RSI seeding rule.
func (c *Config) Seeding() (calculator.Seeding, error) {
	return calculator.ParseSeeding(c.RSI.Seeding)
}

// EmailEnabled reports whether SMTP credentials and a recipient are present.
func (c *Config) EmailEnabled() bool {
	return c.Email.Sender != "" && c.Email.Password != "" && c.Email.Recipient != ""
}

// TelegramEnabled reports whether a bot token and chat are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks the configuration once at startup.
func (c *Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("rsi thresholds: %w", err)
	}
	if c.RSI.Period < 1 {
		return fmt.Errorf("rsi.period must be at least 1")
	}
	if c.RSI.Hysteresis < 0 {
		return fmt.Errorf("rsi.hysteresis must not be negative")
	}
	if _, err := c.Seeding(); err != nil {
		return err
	}
	if c.Market.Candles < c.RSI.Period+1 {
		return fmt.Errorf("market.candles (%d) must be at least rsi.period+1 (%d)", c.Market.Candles, c.RSI.Period+1)
	}
	if _, err := collector.ParseTimeframe(c.Market.Timeframe); err != nil {
		return fmt.Errorf("market.timeframe: %w", err)
	}
	switch c.DataSource.Provider {
	case "hyperliquid", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Schedule.IntervalMinutes <= 0 {
		return fmt.Errorf("schedule.interval_minutes must be positive")
	}
	if (c.Email.Sender != "" || c.Email.Recipient != "") && !c.EmailEnabled() {
		return fmt.Errorf("email.sender, email.password and email.recipient must be set together")
	}
	if (c.Telegram.BotToken != "") != (c.Telegram.ChatID != "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
