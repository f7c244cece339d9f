package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"FundDesk/internal/money"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for concurrent readers.
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
		`CREATE TABLE IF NOT EXISTS ledger_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			event_type     TEXT NOT NULL,
			virtual_date   TEXT,
			transaction_id TEXT,
			client_id      TEXT,
			amount         INTEGER,
			capital_before INTEGER,
			capital_after  INTEGER,
			results_before INTEGER,
			results_after  INTEGER,
			note           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_ts ON ledger_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_tx ON ledger_events(transaction_id)`,

		`CREATE TABLE IF NOT EXISTS performance_history (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			reference_date TEXT NOT NULL,
			percentage     TEXT NOT NULL,
			capital        INTEGER,
			result         INTEGER,
			automatic      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_performance_ref ON performance_history(reference_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

func (r *SQLiteRecorder) RecordLedgerEvent(ctx context.Context, evt *LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO ledger_events
		(timestamp, event_type, virtual_date, transaction_id, client_id, amount,
		 capital_before, capital_after, results_before, results_after, note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().UnixMilli(), evt.EventType, evt.VirtualDate.Format(dateLayout),
		evt.TransactionID, evt.ClientID, int64(evt.Amount),
		int64(evt.CapitalBefore), int64(evt.CapitalAfter),
		int64(evt.ResultsBefore), int64(evt.ResultsAfter), evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) RecordPerformance(ctx context.Context, evt *PerformanceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO performance_history
		(timestamp, reference_date, percentage, capital, result, automatic)
		VALUES (?,?,?,?,?,?)`,
		time.Now().UnixMilli(), evt.ReferenceDate.Format(dateLayout), evt.Percentage.String(),
		int64(evt.Capital), int64(evt.Result), evt.Automatic,
	)
	return err
}

// ListEvents returns the most recent ledger events, newest first.
func (r *SQLiteRecorder) ListEvents(ctx context.Context, limit int) ([]LedgerEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, event_type, virtual_date, transaction_id,
		client_id, amount, capital_before, capital_after, results_before, results_after, note
		FROM ledger_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	out := []LedgerEvent{}
	for rows.Next() {
		var (
			evt                    LedgerEvent
			ts                     int64
			vdate                  string
			amount, cb, ca, rb, ra int64
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.EventType, &vdate, &evt.TransactionID, &evt.ClientID,
			&amount, &cb, &ca, &rb, &ra, &evt.Note); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		evt.RecordedAt = time.UnixMilli(ts).UTC()
		if d, err := time.Parse(dateLayout, vdate); err == nil {
			evt.VirtualDate = d
		}
		evt.Amount = money.Cents(amount)
		evt.CapitalBefore, evt.CapitalAfter = money.Cents(cb), money.Cents(ca)
		evt.ResultsBefore, evt.ResultsAfter = money.Cents(rb), money.Cents(ra)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
