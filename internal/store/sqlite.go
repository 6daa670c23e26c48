package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS strategy_ledger (
    strategy   TEXT PRIMARY KEY,
    positive   INTEGER NOT NULL DEFAULT 0,
    total      INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feedback (
    id          TEXT PRIMARY KEY,
    task_id     TEXT NOT NULL DEFAULT '',
    strategy    TEXT NOT NULL,
    was_helpful INTEGER NOT NULL,
    created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_strategy ON feedback(strategy);
`

// SQLiteStore keeps the ledger and the feedback log in a local SQLite
// database in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer; the one connection also serializes ledger updates.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=FULL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetLedgerEntry(ctx context.Context, strategy string) (LedgerEntry, error) {
	var e LedgerEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT positive, total FROM strategy_ledger WHERE strategy = ?`, strategy,
	).Scan(&e.Positive, &e.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return LedgerEntry{}, nil
	}
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("get ledger entry %q: %w", strategy, err)
	}
	return e, nil
}

func (s *SQLiteStore) ListLedger(ctx context.Context) (map[string]LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT strategy, positive, total FROM strategy_ledger`)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	out := make(map[string]LedgerEntry)
	for rows.Next() {
		var name string
		var e LedgerEntry
		if err := rows.Scan(&name, &e.Positive, &e.Total); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out[name] = e
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordFeedback(ctx context.Context, fb *Feedback) (LedgerEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO feedback (id, task_id, strategy, was_helpful, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		fb.ID.String(), fb.TaskID, fb.Strategy, boolToInt(fb.WasHelpful), fb.CreatedAt.UTC(),
	); err != nil {
		return LedgerEntry{}, fmt.Errorf("insert feedback: %w", err)
	}

	var e LedgerEntry
	err = tx.QueryRowContext(ctx, `
		INSERT INTO strategy_ledger (strategy, positive, total, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(strategy) DO UPDATE SET
			positive = positive + excluded.positive,
			total = total + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING positive, total`,
		fb.Strategy, boolToInt(fb.WasHelpful),
	).Scan(&e.Positive, &e.Total)
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("update ledger %q: %w", fb.Strategy, err)
	}

	if err := tx.Commit(); err != nil {
		return LedgerEntry{}, fmt.Errorf("commit feedback: %w", err)
	}
	return e, nil
}

// ListFeedback returns the most recent feedback events for strategy, newest
// first. An empty strategy lists all strategies.
func (s *SQLiteStore) ListFeedback(ctx context.Context, strategy string, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, strategy, was_helpful, created_at
		FROM feedback
		WHERE (? = '' OR strategy = ?)
		ORDER BY created_at DESC
		LIMIT ?`, strategy, strategy, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var fb Feedback
		var id string
		var helpful int
		if err := rows.Scan(&id, &fb.TaskID, &fb.Strategy, &helpful, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if err := fb.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("parse feedback id: %w", err)
		}
		fb.WasHelpful = helpful != 0
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
