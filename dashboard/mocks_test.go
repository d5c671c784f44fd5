package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"equity-dashboard/models"
	"equity-dashboard/repository"
	"equity-dashboard/services"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
)

// mockFetcher serves canned series per ticker
type mockFetcher struct {
	mu     sync.Mutex
	series map[string]*models.PriceSeries
	errs   map[string]error
	calls  map[string]int
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		series: make(map[string]*models.PriceSeries),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (m *mockFetcher) Name() string { return "mock" }

func (m *mockFetcher) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[ticker]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}
	s, ok := m.series[ticker]
	if !ok {
		return nil, fmt.Errorf("no bars for %s: %w", ticker, models.ErrDataUnavailable)
	}
	return s.Clone(), nil
}

func (m *mockFetcher) callCount(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

// mockCache is an in-memory SeriesCache
type mockCache struct {
	mu      sync.Mutex
	entries map[string]*models.PriceSeries
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*models.PriceSeries)}
}

func (c *mockCache) key(ticker string, start, end time.Time) string {
	return ticker + "|" + repository.SeriesCacheKey(start, end)
}

func (c *mockCache) GetCachedSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[c.key(ticker, start, end)].Clone(), nil
}

func (c *mockCache) SetCachedSeries(ctx context.Context, s *models.PriceSeries, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(s.Ticker, s.Start, s.End)] = s.Clone()
	return nil
}

func (c *mockCache) InvalidateCache(ctx context.Context, ticker string) error {
	return nil
}

func (c *mockCache) CleanExpiredCache(ctx context.Context) (int64, error) {
	return 0, nil
}

// mockRunStore keeps runs in memory
type mockRunStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]models.AnalysisRun
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{runs: make(map[uuid.UUID]models.AnalysisRun)}
}

func (s *mockRunStore) CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *mockRunStore) UpdateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *mockRunStore) GetAnalysisRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (s *mockRunStore) GetAnalysisRuns(ctx context.Context, company string, limit int) ([]models.AnalysisRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AnalysisRun, 0, len(s.runs))
	for _, r := range s.runs {
		if company == "" || r.Company == company {
			out = append(out, r)
		}
	}
	return out, nil
}

var (
	_ services.PriceFetcher  = (*mockFetcher)(nil)
	_ repository.SeriesCache = (*mockCache)(nil)
	_ repository.RunStore    = (*mockRunStore)(nil)
)

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

// makeSeries builds n consecutive days of rising closes
func makeSeries(ticker string, n int) *models.PriceSeries {
	s := &models.PriceSeries{Ticker: ticker, Start: testStart, End: testEnd}
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		s.Points = append(s.Points, models.PricePoint{
			Date:   testStart.AddDate(0, 0, i),
			Open:   null.FloatFrom(c - 0.5),
			High:   null.FloatFrom(c + 1),
			Low:    null.FloatFrom(c - 1),
			Close:  null.FloatFrom(c),
			Volume: null.FloatFrom(1000),
		})
	}
	return s
}

func testResolver() *services.Resolver {
	return services.NewResolver(map[string]string{
		"TATA CONSULTANCY SERVICES LTD.": "TCS.NS",
		"INFOSYS LIMITED":                "INFY.NS",
		"WIPRO LTD":                      "WIPRO.NS",
	})
}
