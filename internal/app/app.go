package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equity-dashboard/config"
	"equity-dashboard/dashboard"
	"equity-dashboard/models"
	"equity-dashboard/services"

	"github.com/google/uuid"
)

var (
	// ErrNoDatabase is returned by run history calls when no database is configured
	ErrNoDatabase = errors.New("database not initialized")

	// ErrBusy is returned when too many dashboard requests are in flight
	ErrBusy = errors.New("dashboard queue full, too many concurrent requests - try again later")

	// ErrTooManyCompanies is returned when a request names more companies than allowed
	ErrTooManyCompanies = errors.New("too many companies requested")

	// ErrInvalidID is returned for a malformed run ID
	ErrInvalidID = errors.New("invalid UUID")
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	GetAnalysisRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error)
	GetAnalysisRuns(ctx context.Context, company string, limit int) ([]models.AnalysisRun, error)
}

// PipelineInterface defines the analysis operations
type PipelineInterface interface {
	Run(ctx context.Context, opts models.DashboardOptions) (*dashboard.Result, error)
	AnalyzeCompany(ctx context.Context, company string, start, end time.Time) (*dashboard.Analysis, error)
	Resolver() services.SymbolResolver
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	ctx          context.Context
	cfg          *config.Config
	repo         RepositoryInterface
	pipeline     PipelineInterface
	provider     string
	dashboardSem chan struct{}
	health       *HealthCache
}

// New creates a new App. repo may be nil when no database is configured.
func New(cfg *config.Config, repo RepositoryInterface, pipeline PipelineInterface, provider string) *App {
	return &App{
		ctx:          context.Background(),
		cfg:          cfg,
		repo:         repo,
		pipeline:     pipeline,
		provider:     provider,
		dashboardSem: make(chan struct{}, cfg.Dashboard.MaxInFlight),
		health:       NewHealthCache(DefaultHealthCacheTTL),
	}
}

// Startup is called when the app starts
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Repo returns the repository interface for API handlers
func (a *App) Repo() RepositoryInterface {
	return a.repo
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// Provider names the active price provider
func (a *App) Provider() string {
	return a.provider
}

// Resolver returns the company listing, or nil before the pipeline is wired
func (a *App) Resolver() services.SymbolResolver {
	if a.pipeline == nil {
		return nil
	}
	return a.pipeline.Resolver()
}

// DefaultOptions returns a copy of the configured dashboard defaults
func (a *App) DefaultOptions() models.DashboardOptions {
	opts := a.cfg.Defaults
	opts.Companies = append([]string(nil), a.cfg.Defaults.Companies...)
	return opts
}

// acquire takes a slot without waiting
func (a *App) acquire() (func(), error) {
	select {
	case a.dashboardSem <- struct{}{}:
		return func() { <-a.dashboardSem }, nil
	default:
		return nil, ErrBusy
	}
}

// RunDashboard analyzes every requested company and builds its charts
func (a *App) RunDashboard(ctx context.Context, opts models.DashboardOptions) (*dashboard.Result, error) {
	if a.pipeline == nil {
		return nil, fmt.Errorf("pipeline not initialized")
	}
	if max := a.cfg.Dashboard.MaxCompanies; len(opts.Companies) > max {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyCompanies, len(opts.Companies), max)
	}

	release, err := a.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return a.pipeline.Run(ctx, opts)
}

// Analyze runs the pipeline for a single company, for export
func (a *App) Analyze(ctx context.Context, company string, start, end time.Time) (*dashboard.Analysis, error) {
	if a.pipeline == nil {
		return nil, fmt.Errorf("pipeline not initialized")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", models.ErrInvalidRange,
			end.Format(models.DateLayout), start.Format(models.DateLayout))
	}

	release, err := a.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout())
	defer cancel()
	return a.pipeline.AnalyzeCompany(ctx, company, start, end)
}

// GetRuns returns recent analysis runs, optionally for one company
func (a *App) GetRuns(ctx context.Context, company string, limit int) ([]models.AnalysisRun, error) {
	if a.repo == nil {
		return nil, ErrNoDatabase
	}
	return a.repo.GetAnalysisRuns(ctx, company, limit)
}

// GetRunByID returns a single analysis run
func (a *App) GetRunByID(ctx context.Context, id string) (*models.AnalysisRun, error) {
	if a.repo == nil {
		return nil, ErrNoDatabase
	}

	parsed, err := ParseUUID(id)
	if err != nil {
		return nil, err
	}

	return a.repo.GetAnalysisRun(ctx, parsed)
}

// ParseUUID parses a string UUID
func ParseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return parsed, nil
}

// DashboardSemCapacity returns the capacity of the dashboard semaphore (for testing)
func (a *App) DashboardSemCapacity() int {
	return cap(a.dashboardSem)
}

// Compile-time interface verification
var _ PipelineInterface = (*dashboard.Pipeline)(nil)
