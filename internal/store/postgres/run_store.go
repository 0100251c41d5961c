// Package postgres provides Postgres-backed persistence for run history.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunRecord is the summary row persisted for each completed mirror run.
type RunRecord struct {
	ID          uuid.UUID
	BaseURL     string
	SessionID   string
	StartedAt   time.Time
	FinishedAt  time.Time
	TotalPages  int
	Succeeded   int
	Failed      int
	Words       int
	SuccessRate float64
}

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close()
}

// RunStore persists run summaries.
// It assumes a table schema like:
//
//	CREATE TABLE runs (
//	    id UUID PRIMARY KEY,
//	    base_url TEXT NOT NULL,
//	    session_id TEXT NOT NULL,
//	    started_at TIMESTAMPTZ NOT NULL,
//	    finished_at TIMESTAMPTZ NOT NULL,
//	    total_pages INT NOT NULL,
//	    succeeded INT NOT NULL,
//	    failed INT NOT NULL,
//	    words INT NOT NULL,
//	    success_rate DOUBLE PRECISION NOT NULL
//	);
type RunStore struct {
	db DB
}

// NewRunStore connects a RunStore to the database at dsn.
func NewRunStore(ctx context.Context, dsn string) (*RunStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &RunStore{db: pool}, nil
}

// NewRunStoreWithDB wraps an existing connection, used by tests.
func NewRunStoreWithDB(db DB) *RunStore {
	return &RunStore{db: db}
}

// Close releases the underlying connection pool.
func (s *RunStore) Close() {
	s.db.Close()
}

// SaveRun inserts one run summary row.
func (s *RunStore) SaveRun(ctx context.Context, record RunRecord) error {
	query := `
		INSERT INTO runs (id, base_url, session_id, started_at, finished_at,
			total_pages, succeeded, failed, words, success_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, query,
		record.ID,
		record.BaseURL,
		record.SessionID,
		record.StartedAt,
		record.FinishedAt,
		record.TotalPages,
		record.Succeeded,
		record.Failed,
		record.Words,
		record.SuccessRate,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}
