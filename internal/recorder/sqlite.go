package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rohit191819/prediction/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists cycle observations to a SQLite database.
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
		`CREATE TABLE IF NOT EXISTS runs (
			run_id         TEXT PRIMARY KEY,
			started_at     INTEGER NOT NULL,
			symbol         TEXT,
			strategy       TEXT,
			settlement     TEXT,
			initial_equity REAL
		)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id        TEXT PRIMARY KEY,
			run_id    TEXT NOT NULL,
			cycle     INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			symbol    TEXT,
			signal    TEXT,
			entry     REAL,
			exit      REAL,
			pnl       REAL,
			equity    REAL,
			peak      REAL,
			drawdown  REAL,
			note      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_run ON cycles(run_id, cycle)`,

		`CREATE TABLE IF NOT EXISTS halts (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT NOT NULL,
			cycle              INTEGER,
			timestamp          INTEGER NOT NULL,
			reason             TEXT,
			equity             REAL,
			peak               REAL,
			consecutive_losses INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(info *RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, started_at, symbol, strategy, settlement, initial_equity)
		VALUES (?,?,?,?,?,?)`,
		info.RunID, time.Now().Unix(), info.Symbol, info.Strategy, info.Settlement, info.InitialEquity,
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(obs *model.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(id, run_id, cycle, timestamp, kind, symbol, signal, entry, exit, pnl, equity, peak, drawdown, note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		obs.ID, obs.RunID, obs.Cycle, obs.Time.Unix(), string(obs.Kind), obs.Symbol, string(obs.Signal),
		obs.Entry, obs.Exit, obs.PnL, obs.Equity, obs.Peak, obs.Drawdown, obs.Note,
	)
	return err
}

func (r *SQLiteRecorder) RecordHalt(evt *HaltEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO halts
		(run_id, cycle, timestamp, reason, equity, peak, consecutive_losses)
		VALUES (?,?,?,?,?,?,?)`,
		evt.RunID, evt.Cycle, time.Now().Unix(), evt.Reason,
		evt.State.Equity, evt.State.PeakEquity, evt.State.ConsecutiveLosses,
	)
	return err
}

// CountCycles returns how many observations of the given kind a run recorded.
// An empty kind counts all of them.
func (r *SQLiteRecorder) CountCycles(runID string, kind model.CycleKind) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := `SELECT COUNT(*) FROM cycles WHERE run_id = ?`
	args := []any{runID}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(kind))
	}
	var n int
	err := r.db.QueryRow(q, args...).Scan(&n)
	return n, err
}

// CountHalts returns how many kill-switch events a run recorded.
func (r *SQLiteRecorder) CountHalts(runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM halts WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
