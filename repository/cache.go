package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"equity-dashboard/models"
	"equity-dashboard/observability"

	"github.com/jackc/pgx/v5"
)

// SeriesCacheKey is the data_type for a daily series over [start, end)
func SeriesCacheKey(start, end time.Time) string {
	return "daily:" + start.Format(models.DateLayout) + ":" + end.Format(models.DateLayout)
}

// GetCachedSeries returns the raw series cached for ticker and range, or nil
// when there is no live entry
func (r *Repository) GetCachedSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "market_data_cache")

	var data []byte
	// Let the database handle expiry check to avoid timezone issues
	err := r.db.QueryRow(ctx, `
		SELECT data FROM market_data_cache
		WHERE symbol = $1 AND data_type = $2 AND expires_at > NOW()
	`, ticker, SeriesCacheKey(start, end)).Scan(&data)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "market_data_cache")
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var s models.PriceSeries
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached series: %w", err)
	}
	return &s, nil
}

// SetCachedSeries stores a raw series under its ticker and range for ttl
func (r *Repository) SetCachedSeries(ctx context.Context, s *models.PriceSeries, ttl time.Duration) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("upsert", "market_data_cache")

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO market_data_cache (symbol, data_type, data, expires_at)
		VALUES ($1, $2, $3, NOW() + $4::interval)
		ON CONFLICT (symbol, data_type)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $4::interval, created_at = NOW()
	`, s.Ticker, SeriesCacheKey(s.Start, s.End), data, ttl.String())

	if err != nil {
		metrics.RecordDBError("upsert", "market_data_cache")
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// InvalidateCache removes every cached range for a ticker
func (r *Repository) InvalidateCache(ctx context.Context, ticker string) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE symbol = $1`, ticker); err != nil {
		observability.GetMetrics().RecordDBError("delete", "market_data_cache")
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes all expired cache entries
func (r *Repository) CleanExpiredCache(ctx context.Context) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("delete", "market_data_cache")

	result, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE expires_at < NOW()`)
	if err != nil {
		metrics.RecordDBError("delete", "market_data_cache")
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}
