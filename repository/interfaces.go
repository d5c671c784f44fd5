package repository

import (
	"context"
	"time"

	"equity-dashboard/models"

	"github.com/google/uuid"
)

// SeriesCache stores raw fetched series between requests
type SeriesCache interface {
	GetCachedSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error)
	SetCachedSeries(ctx context.Context, s *models.PriceSeries, ttl time.Duration) error
	InvalidateCache(ctx context.Context, ticker string) error
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// RunStore records per-company analysis runs
type RunStore interface {
	CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error
	UpdateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error
	GetAnalysisRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error)
	GetAnalysisRuns(ctx context.Context, company string, limit int) ([]models.AnalysisRun, error)
}

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	SeriesCache
	RunStore

	Close()
	Health(ctx context.Context) error
	Migrate(ctx context.Context) error
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
