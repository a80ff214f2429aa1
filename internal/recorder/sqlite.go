package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stockwatch/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the monitor writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_history (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at       INTEGER NOT NULL,
			finished_at      INTEGER NOT NULL,
			alerts_checked   INTEGER,
			symbols_fetched  INTEGER,
			alerts_triggered INTEGER,
			notify_failures  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_started ON scan_history(started_at)`,

		`CREATE TABLE IF NOT EXISTS trigger_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			triggered_at  INTEGER NOT NULL,
			alert_id      TEXT,
			user_id       TEXT,
			symbol        TEXT,
			alert_type    TEXT,
			current_price REAL,
			target_price  REAL,
			success       INTEGER,
			reason        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trigger_ts ON trigger_events(triggered_at)`,
		`CREATE INDEX IF NOT EXISTS idx_trigger_symbol ON trigger_events(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(report *model.ScanReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scan_history
		(started_at, finished_at, alerts_checked, symbols_fetched, alerts_triggered, notify_failures)
		VALUES (?,?,?,?,?,?)`,
		report.StartedAt.Unix(), report.FinishedAt.Unix(),
		report.AlertsChecked, report.SymbolsFetched, report.AlertsTriggered,
		report.Failures(),
	)
	return err
}

func (r *SQLiteRecorder) RecordTrigger(evt *TriggerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	success := 0
	if evt.Success {
		success = 1
	}
	ts := evt.TriggeredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO trigger_events
		(triggered_at, alert_id, user_id, symbol, alert_type, current_price, target_price, success, reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), evt.AlertID, evt.UserID, evt.Symbol, evt.AlertType,
		evt.CurrentPrice, evt.TargetPrice, success, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
