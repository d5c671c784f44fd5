package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"equity-dashboard/charts"
	"equity-dashboard/indicators"
	"equity-dashboard/models"
	"equity-dashboard/observability"
	"equity-dashboard/repository"
	"equity-dashboard/series"
	"equity-dashboard/services"
)

// Config bounds the work done for one dashboard request
type Config struct {
	ConcurrencyLimit int
	Timeout          time.Duration
	CacheTTL         time.Duration
}

// DefaultConfig returns the limits used when none are configured
func DefaultConfig() Config {
	return Config{
		ConcurrencyLimit: 4,
		Timeout:          60 * time.Second,
		CacheTTL:         6 * time.Hour,
	}
}

// Pipeline runs resolve, fetch, prepare and compute for each requested company.
// The cache and run store are optional.
type Pipeline struct {
	resolver services.SymbolResolver
	fetcher  services.PriceFetcher
	cache    repository.SeriesCache
	runs     repository.RunStore
	cfg      Config
}

// Option configures optional pipeline collaborators
type Option func(*Pipeline)

// WithCache enables the series cache
func WithCache(c repository.SeriesCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithRunStore enables run recording
func WithRunStore(s repository.RunStore) Option {
	return func(p *Pipeline) { p.runs = s }
}

// NewPipeline creates a new Pipeline
func NewPipeline(resolver services.SymbolResolver, fetcher services.PriceFetcher, cfg Config, opts ...Option) *Pipeline {
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = 1
	}
	p := &Pipeline{
		resolver: resolver,
		fetcher:  fetcher,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolver returns the symbol resolver the pipeline was built with
func (p *Pipeline) Resolver() services.SymbolResolver {
	return p.resolver
}

// Analysis is the computed output for one company
type Analysis struct {
	Company  string
	Ticker   string
	Series   *models.IndicatorSeries
	Summary  models.Summary
	CacheHit bool
}

// UnresolvedLabel is the metrics ticker label for companies that never
// resolved, keeping user input out of label values
const UnresolvedLabel = "unresolved"

// AnalyzeCompany resolves the company, loads its prices for [start, end) and
// computes every indicator column. Failures are wrapped in a SymbolError.
func (p *Pipeline) AnalyzeCompany(ctx context.Context, company string, start, end time.Time) (*Analysis, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()

	run := models.NewAnalysisRun(company, start, end)
	p.createRun(ctx, run)

	a, err := p.analyze(ctx, company, start, end, run)

	label := UnresolvedLabel
	if a != nil {
		label = a.Ticker
	} else if run.Ticker != "" {
		label = run.Ticker
	}
	metrics.RecordPipelineRequest(label)

	if err != nil {
		run.Fail(err)
		p.updateRun(ctx, run)
		timer.ObservePipeline(label, "error")
		metrics.RecordPipelineError(label, string(models.KindOf(err)))
		observability.WithCompany(company).Warn("analysis failed",
			"ticker", run.Ticker,
			"kind", models.KindOf(err),
			"error", err)
		return nil, &models.SymbolError{Company: company, Ticker: run.Ticker, Err: err}
	}

	run.CacheHit = a.CacheHit
	run.Complete(a.Series.Len())
	p.updateRun(ctx, run)
	timer.ObservePipeline(label, "success")
	metrics.RecordRowsComputed(a.Series.Len())

	observability.WithCompany(company).Debug("analysis completed",
		"ticker", a.Ticker,
		"rows", a.Series.Len(),
		"cache_hit", a.CacheHit,
		"duration_ms", timer.Duration().Milliseconds())

	return a, nil
}

func (p *Pipeline) analyze(ctx context.Context, company string, start, end time.Time, run *models.AnalysisRun) (*Analysis, error) {
	ticker, err := p.resolver.Resolve(company)
	if err != nil {
		return nil, err
	}
	run.Ticker = ticker

	raw, hit, err := p.load(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	prepared, err := series.Prepare(raw)
	if err != nil {
		return nil, err
	}

	computed := indicators.Compute(prepared)
	return &Analysis{
		Company:  company,
		Ticker:   ticker,
		Series:   computed,
		Summary:  models.NewSummary(computed),
		CacheHit: hit,
	}, nil
}

// load returns the raw series from the cache or the provider. Cache failures
// degrade to a provider fetch.
func (p *Pipeline) load(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, bool, error) {
	metrics := observability.GetMetrics()

	if p.cache != nil {
		cached, err := p.cache.GetCachedSeries(ctx, ticker, start, end)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			observability.WithTicker(ticker).Warn("cache lookup failed", "error", err)
		case cached != nil && !cached.IsEmpty():
			metrics.RecordCacheLookup("hit")
			return cached, true, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}

	raw, err := p.fetcher.FetchSeries(ctx, ticker, start, end)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s from %s: %w", ticker, p.fetcher.Name(), err)
	}
	if raw.IsEmpty() {
		return nil, false, fmt.Errorf("fetch %s: %w", ticker, models.ErrDataUnavailable)
	}

	if p.cache != nil && p.cfg.CacheTTL > 0 {
		if err := p.cache.SetCachedSeries(ctx, raw, p.cfg.CacheTTL); err != nil {
			observability.WithTicker(ticker).Warn("failed to cache series", "error", err)
		}
	}
	return raw, false, nil
}

func (p *Pipeline) createRun(ctx context.Context, run *models.AnalysisRun) {
	if p.runs == nil {
		return
	}
	if err := p.runs.CreateAnalysisRun(ctx, run); err != nil {
		observability.Warn("failed to record analysis run", "company", run.Company, "error", err)
	}
}

func (p *Pipeline) updateRun(ctx context.Context, run *models.AnalysisRun) {
	if p.runs == nil {
		return
	}
	// The run outcome is stored even when the request was cancelled
	if err := p.runs.UpdateAnalysisRun(context.WithoutCancel(ctx), run); err != nil {
		observability.Warn("failed to update analysis run", "id", run.ID, "error", err)
	}
}

// Run analyzes every company in opts concurrently, bounded by the configured
// limit. Reports come back in request order; one company's failure never
// affects another's report.
func (p *Pipeline) Run(ctx context.Context, opts models.DashboardOptions) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	companies := dedupeCompanies(opts.Companies)
	reports := make([]Report, len(companies))
	sem := make(chan struct{}, p.cfg.ConcurrencyLimit)
	var wg sync.WaitGroup

	for i, company := range companies {
		wg.Add(1)
		go func(idx int, company string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				reports[idx] = failedReport(company, "", ctx.Err())
				return
			}

			a, err := p.AnalyzeCompany(ctx, company, opts.Start, opts.End)
			if err != nil {
				ticker := ""
				var se *models.SymbolError
				if errors.As(err, &se) {
					ticker = se.Ticker
				}
				reports[idx] = failedReport(company, ticker, err)
				return
			}
			reports[idx] = newReport(a, opts)
		}(i, company)
	}

	wg.Wait()

	res := &Result{Options: opts, Reports: reports}
	observability.Info("dashboard run completed",
		"companies", len(companies),
		"failed", res.Failed())
	return res, nil
}

// dedupeCompanies drops blank and repeated names, keeping first occurrence order
func dedupeCompanies(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func newReport(a *Analysis, opts models.DashboardOptions) Report {
	summary := a.Summary
	return Report{
		Company:  a.Company,
		Ticker:   a.Ticker,
		Status:   StatusOK,
		Summary:  &summary,
		Charts:   charts.Build(a.Company, a.Series, opts),
		Series:   a.Series,
		CacheHit: a.CacheHit,
	}
}

func failedReport(company, ticker string, err error) Report {
	return Report{
		Company:   company,
		Ticker:    ticker,
		Status:    StatusError,
		ErrorKind: models.KindOf(err),
		Error:     err.Error(),
	}
}
