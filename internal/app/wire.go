package app

import (
	"context"
	"fmt"

	"equity-dashboard/config"
	"equity-dashboard/dashboard"
	"equity-dashboard/observability"
	"equity-dashboard/repository"
	"equity-dashboard/services"
)

// Runtime is the fully wired process graph
type Runtime struct {
	App      *App
	Pipeline *dashboard.Pipeline
	Fetcher  services.PriceFetcher
	// Repo is nil when DATABASE_URL is unset
	Repo *repository.Repository
}

// Close releases the database pool
func (rt *Runtime) Close() {
	if rt.Repo != nil {
		rt.Repo.Close()
	}
}

// NewFetcher returns the price provider selected by cfg
func NewFetcher(cfg *config.Config) (services.PriceFetcher, error) {
	switch cfg.Provider.Name {
	case config.ProviderYahoo:
		return services.NewYahooService(cfg.Provider.YahooBaseURL, cfg.ProviderTimeout()), nil
	case config.ProviderAlpaca:
		if !cfg.HasAlpaca() {
			return nil, fmt.Errorf("alpaca provider selected without credentials")
		}
		return services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL), nil
	default:
		return nil, fmt.Errorf("unknown price provider %q", cfg.Provider.Name)
	}
}

// Wire loads the company listing, connects the optional database and builds
// the pipeline and App. The listing is required; a database failure only
// disables caching and run history.
func Wire(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}

	listing := services.NewListingService(cfg.Listing.URL, cfg.Listing.Suffix, cfg.ProviderTimeout())
	resolver, err := listing.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load company listing: %w", err)
	}

	rt := &Runtime{Fetcher: fetcher}
	var opts []dashboard.Option
	if cfg.HasDatabase() {
		repo, err := repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Warn("failed to initialize database, running without cache and run history", "error", err)
		} else if err := repo.Migrate(ctx); err != nil {
			observability.Warn("failed to migrate database, running without cache and run history", "error", err)
			repo.Close()
		} else {
			rt.Repo = repo
			opts = append(opts, dashboard.WithCache(repo), dashboard.WithRunStore(repo))
		}
	} else {
		observability.Info("DATABASE_URL not set, cache and run history disabled")
	}

	rt.Pipeline = dashboard.NewPipeline(resolver, fetcher, dashboard.Config{
		ConcurrencyLimit: cfg.Dashboard.ConcurrencyLimit,
		Timeout:          cfg.RequestTimeout(),
		CacheTTL:         cfg.CacheTTL(),
	}, opts...)

	// A nil *Repository must not become a non-nil interface
	var repo RepositoryInterface
	if rt.Repo != nil {
		repo = rt.Repo
	}
	rt.App = New(cfg, repo, rt.Pipeline, fetcher.Name())
	rt.App.Startup(ctx)

	observability.Info("application wired",
		"provider", fetcher.Name(),
		"companies", resolver.Len(),
		"database", rt.Repo != nil)
	return rt, nil
}
