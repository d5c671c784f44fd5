package repository

import (
	"context"
	"errors"
	"fmt"

	"equity-dashboard/models"
	"equity-dashboard/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const runColumns = `id, company, ticker, range_start, range_end, status, row_count, cache_hit,
	error_kind, error_message, duration_ms, started_at, completed_at`

// CreateAnalysisRun inserts a new run record
func (r *Repository) CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "analysis_runs")

	_, err := r.db.Exec(ctx, `
		INSERT INTO analysis_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, run.ID, run.Company, run.Ticker, run.RangeStart, run.RangeEnd, run.Status, run.Rows, run.CacheHit,
		run.ErrorKind, run.ErrorMessage, run.DurationMs, run.StartedAt, run.CompletedAt)

	if err != nil {
		metrics.RecordDBError("insert", "analysis_runs")
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

// UpdateAnalysisRun stores the outcome of a run
func (r *Repository) UpdateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("update", "analysis_runs")

	_, err := r.db.Exec(ctx, `
		UPDATE analysis_runs
		SET ticker = $2, status = $3, row_count = $4, cache_hit = $5, error_kind = $6,
			error_message = $7, duration_ms = $8, completed_at = $9
		WHERE id = $1
	`, run.ID, run.Ticker, run.Status, run.Rows, run.CacheHit, run.ErrorKind,
		run.ErrorMessage, run.DurationMs, run.CompletedAt)

	if err != nil {
		metrics.RecordDBError("update", "analysis_runs")
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// GetAnalysisRun returns a run by ID, or nil when it does not exist
func (r *Repository) GetAnalysisRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "analysis_runs")

	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "analysis_runs")
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return run, nil
}

// GetAnalysisRuns returns the most recent runs, newest first. An empty
// company returns runs for every company.
func (r *Repository) GetAnalysisRuns(ctx context.Context, company string, limit int) ([]models.AnalysisRun, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "analysis_runs")

	rows, err := r.db.Query(ctx, `
		SELECT `+runColumns+`
		FROM analysis_runs
		WHERE $1 = '' OR company = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, company, limit)
	if err != nil {
		metrics.RecordDBError("select", "analysis_runs")
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	runs := []models.AnalysisRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			metrics.RecordDBError("select", "analysis_runs")
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := row.Scan(&run.ID, &run.Company, &run.Ticker, &run.RangeStart, &run.RangeEnd, &run.Status,
		&run.Rows, &run.CacheHit, &run.ErrorKind, &run.ErrorMessage, &run.DurationMs,
		&run.StartedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
