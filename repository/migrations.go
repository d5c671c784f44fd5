package repository

import (
	"context"
	"fmt"

	"equity-dashboard/observability"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS market_data_cache (
		symbol     TEXT        NOT NULL,
		data_type  TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (symbol, data_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_market_data_cache_expires ON market_data_cache (expires_at)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id            UUID        PRIMARY KEY,
		company       TEXT        NOT NULL,
		ticker        TEXT        NOT NULL DEFAULT '',
		range_start   DATE        NOT NULL,
		range_end     DATE        NOT NULL,
		status        TEXT        NOT NULL,
		row_count     INTEGER     NOT NULL DEFAULT 0,
		cache_hit     BOOLEAN     NOT NULL DEFAULT FALSE,
		error_kind    TEXT        NOT NULL DEFAULT '',
		error_message TEXT        NOT NULL DEFAULT '',
		duration_ms   INTEGER     NOT NULL DEFAULT 0,
		started_at    TIMESTAMPTZ NOT NULL,
		completed_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_started ON analysis_runs (started_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_company ON analysis_runs (company, started_at DESC)`,
}

// Migrate creates the tables the dashboard needs in one transaction. It is
// safe to run on every start.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	if r.pool == nil {
		return ErrNotInitialized
	}

	tx, txRepo, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, stmt := range schema {
		if _, err := txRepo.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	observability.Debug("database schema up to date", "statements", len(schema))
	return nil
}
