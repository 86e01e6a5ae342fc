package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"RSISentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists readings and alerts to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	// WAL mode lets dashboards read while the monitor writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rsi_readings (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			timeframe        TEXT NOT NULL,
			rsi              REAL,
			close_price      REAL,
			candles          INTEGER,
			overbought_armed INTEGER,
			oversold_armed   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_ts ON rsi_readings(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			timeframe  TEXT NOT NULL,
			kind       TEXT NOT NULL,
			rsi        REAL,
			threshold  REAL,
			delivered  INTEGER,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alert_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableRSI stores undefined readings as NULL.
func nullableRSI(v model.RSIValue) sql.NullFloat64 {
	f, ok := v.Value()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

func (r *SQLiteRecorder) RecordReading(rd *Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO rsi_readings
		(timestamp, symbol, timeframe, rsi, close_price, candles, overbought_armed, oversold_armed)
		VALUES (?,?,?,?,?,?,?,?)`,
		rd.Time.Unix(), rd.Symbol, rd.Timeframe, nullableRSI(rd.RSI), rd.Close, rd.Candles,
		boolInt(rd.Latches.OverboughtArmed), boolInt(rd.Latches.OversoldArmed),
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(a *AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev := a.Event
	_, err := r.db.Exec(`INSERT INTO alert_events
		(timestamp, symbol, timeframe, kind, rsi, threshold, delivered, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		ev.Time.Unix(), ev.Symbol, ev.Timeframe, string(ev.Kind), nullableRSI(ev.RSI),
		ev.Threshold, boolInt(a.Delivered), a.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecentAlerts(limit int) ([]AlertRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, timeframe, kind, rsi, threshold, delivered, error
		FROM alert_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var (
			ts        int64
			ev        model.AlertEvent
			kind      string
			rsi       sql.NullFloat64
			delivered int
			errText   sql.NullString
		)
		if err := rows.Scan(&ts, &ev.Symbol, &ev.Timeframe, &kind, &rsi, &ev.Threshold, &delivered, &errText); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		ev.Time = time.Unix(ts, 0)
		ev.Kind = model.AlertKind(kind)
		if rsi.Valid {
			ev.RSI = model.NewRSIValue(rsi.Float64)
		}
		out = append(out, AlertRecord{Event: &ev, Delivered: delivered == 1, Error: errText.String})
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
