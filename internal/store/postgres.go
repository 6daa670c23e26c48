package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS strategy_ledger (
	strategy   TEXT PRIMARY KEY,
	positive   INTEGER NOT NULL DEFAULT 0,
	total      INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS task_feedback (
	id          UUID PRIMARY KEY,
	task_id     TEXT NOT NULL DEFAULT '',
	strategy    TEXT NOT NULL,
	was_helpful BOOLEAN NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_task_feedback_strategy ON task_feedback(strategy, created_at DESC);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetLedgerEntry(ctx context.Context, strategy string) (LedgerEntry, error) {
	var e LedgerEntry
	err := s.pool.QueryRow(ctx,
		`SELECT positive, total FROM strategy_ledger WHERE strategy = $1`, strategy,
	).Scan(&e.Positive, &e.Total)
	if err == pgx.ErrNoRows {
		return LedgerEntry{}, nil
	}
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("get ledger entry %q: %w", strategy, err)
	}
	return e, nil
}

func (s *PostgresStore) ListLedger(ctx context.Context) (map[string]LedgerEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT strategy, positive, total FROM strategy_ledger`)
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

// RecordFeedback inserts the feedback row and bumps the ledger in one
// transaction. The upsert takes a row lock, so concurrent updates to the
// same strategy serialize.
func (s *PostgresStore) RecordFeedback(ctx context.Context, fb *Feedback) (LedgerEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO task_feedback (id, task_id, strategy, was_helpful, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		fb.ID, fb.TaskID, fb.Strategy, fb.WasHelpful, fb.CreatedAt,
	); err != nil {
		return LedgerEntry{}, fmt.Errorf("insert feedback: %w", err)
	}

	var e LedgerEntry
	err = tx.QueryRow(ctx, `
		INSERT INTO strategy_ledger (strategy, positive, total)
		VALUES ($1, $2, 1)
		ON CONFLICT (strategy) DO UPDATE SET
			positive = strategy_ledger.positive + EXCLUDED.positive,
			total = strategy_ledger.total + 1,
			updated_at = now()
		RETURNING positive, total`,
		fb.Strategy, boolToInt(fb.WasHelpful),
	).Scan(&e.Positive, &e.Total)
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("update ledger %q: %w", fb.Strategy, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return LedgerEntry{}, fmt.Errorf("commit feedback: %w", err)
	}
	return e, nil
}

// ListFeedback returns the most recent feedback events for strategy, newest
// first. An empty strategy lists all strategies.
func (s *PostgresStore) ListFeedback(ctx context.Context, strategy string, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, strategy, was_helpful, created_at
		FROM task_feedback
		WHERE ($1 = '' OR strategy = $1)
		ORDER BY created_at DESC
		LIMIT $2`, strategy, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.TaskID, &fb.Strategy, &fb.WasHelpful, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}
