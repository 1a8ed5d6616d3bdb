package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"SignalSage/internal/model"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			pair       TEXT NOT NULL,
			signal     TEXT NOT NULL,
			confidence INTEGER,
			price      REAL,
			rsi        REAL,
			estimated  INTEGER,
			source     TEXT,
			reasoning  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_pair_ts ON signals(pair, timestamp)`,

		`CREATE TABLE IF NOT EXISTS chat_queries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			query      TEXT,
			symbol     TEXT,
			language   TEXT,
			matches    INTEGER,
			has_signal INTEGER,
			fallback   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_ts ON chat_queries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(ctx context.Context, sig *model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := sig.GeneratedAt
	if ts.IsZero() {
		ts = r.now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO signals
		(timestamp, pair, signal, confidence, price, rsi, estimated, source, reasoning)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ts.UnixMilli(), sig.Pair, string(sig.Signal), sig.Confidence, sig.Price,
		rsiOf(sig), sig.Estimated, string(sig.Source), sig.Reasoning,
	)
	return err
}

func (r *SQLiteRecorder) RecordChat(ctx context.Context, evt *ChatEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_queries
		(timestamp, query, symbol, language, matches, has_signal, fallback)
		VALUES (?,?,?,?,?,?,?)`,
		r.now().UnixMilli(), evt.Query, evt.Symbol, string(evt.Language),
		evt.Matches, evt.HasSignal, evt.Fallback,
	)
	return err
}

// RecentSignals returns the newest signals first. An empty pair matches all.
func (r *SQLiteRecorder) RecentSignals(ctx context.Context, pair string, limit int) ([]SignalRecord, error) {
	q := `SELECT id, timestamp, pair, signal, confidence, price, rsi, estimated, source, reasoning
		FROM signals`
	args := []any{}
	if pair != "" {
		q += ` WHERE pair = ?`
		args = append(args, pair)
	}
	q += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, NormalizeLimit(limit))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var (
			rec    SignalRecord
			ts     int64
			action string
			source string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Pair, &action, &rec.Confidence,
			&rec.Price, &rec.RSI, &rec.Estimated, &source, &rec.Reasoning); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(ts).UTC()
		rec.Signal = model.Action(action)
		rec.Source = model.Source(source)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
