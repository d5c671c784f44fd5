// Package e2e provides end-to-end testing infrastructure for the dashboard.
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"equity-dashboard/config"
	"equity-dashboard/e2e/mocks"
	"equity-dashboard/internal/api"
	"equity-dashboard/internal/app"
	"equity-dashboard/repository"
	"equity-dashboard/services"
)

// TestHarness provides the infrastructure for running E2E tests.
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mocks.MockServer
	runtime    *app.Runtime
	router     http.Handler
	config     *config.Config
	// databaseURL enables the cache and run history when set
	databaseURL string
}

// NewTestHarness creates a new test harness. The database is used only when
// E2E_DATABASE_URL is set.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	return &TestHarness{
		t:           t,
		ctx:         ctx,
		cancel:      cancel,
		databaseURL: os.Getenv("E2E_DATABASE_URL"),
	}
}

// Setup starts the mock upstreams and wires the application against them.
func (h *TestHarness) Setup() error {
	services.SetGlobalRegistry(nil)

	h.mockServer = mocks.NewMockServer()
	h.config = NewMockConfig(h.mockServer, h.databaseURL)

	rt, err := app.Wire(h.ctx, h.config)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	h.runtime = rt

	if rt.Repo != nil {
		h.cleanupTestData()
	}

	handler := api.NewHandler(rt.App, h.config)
	h.router = api.NewRouter(handler, h.config)
	return nil
}

// Teardown cleans up all test resources.
func (h *TestHarness) Teardown() {
	if h.runtime != nil {
		h.runtime.App.Shutdown(context.Background())
		if h.runtime.Repo != nil {
			h.cleanupTestData()
		}
		h.runtime.Close()
	}

	if h.cancel != nil {
		h.cancel()
	}

	if h.mockServer != nil {
		h.mockServer.Close()
	}
	services.SetGlobalRegistry(nil)
}

// NewMockConfig returns a configuration whose upstreams all point at m.
func NewMockConfig(m *mocks.MockServer, databaseURL string) *config.Config {
	cfg := config.NewTestConfig()
	cfg.Database.URL = databaseURL
	cfg.Provider.Name = config.ProviderYahoo
	cfg.Provider.YahooBaseURL = m.URL()
	cfg.Provider.TimeoutSeconds = 5
	cfg.Alpaca.DataURL = m.URL()
	cfg.Listing.URL = m.ListingURL()
	cfg.Listing.Suffix = ".NS"
	cfg.Defaults.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Defaults.End = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	return cfg
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the mock server for configuring responses.
func (h *TestHarness) MockServer() *mocks.MockServer {
	return h.mockServer
}

// Repository returns the test database repository, nil without a database.
func (h *TestHarness) Repository() *repository.Repository {
	return h.runtime.Repo
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.runtime.App
}

// Router returns the HTTP router for making requests.
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// HasDatabase reports whether the harness runs with Postgres.
func (h *TestHarness) HasDatabase() bool {
	return h.runtime != nil && h.runtime.Repo != nil
}

// DoRequest performs a GET request and returns the response.
func (h *TestHarness) DoRequest(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// DoHTMXRequest performs an HTMX GET request and returns the response.
func (h *TestHarness) DoHTMXRequest(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// ResetDatabase clears all test data from the database.
func (h *TestHarness) ResetDatabase() {
	if h.HasDatabase() {
		h.cleanupTestData()
	}
}

func (h *TestHarness) cleanupTestData() {
	queries := []string{
		"DELETE FROM analysis_runs",
		"DELETE FROM market_data_cache",
	}

	for _, q := range queries {
		if _, err := h.runtime.Repo.Pool().Exec(context.Background(), q); err != nil {
			h.t.Logf("cleanup query failed: %s: %v", q, err)
		}
	}
}

// RequireDatabase skips the test unless E2E_DATABASE_URL points at a reachable
// Postgres.
func RequireDatabase(t *testing.T) {
	t.Helper()

	dbURL := os.Getenv("E2E_DATABASE_URL")
	if strings.TrimSpace(dbURL) == "" {
		t.Skip("E2E_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo, err := repository.NewRepository(ctx, dbURL)
	if err != nil {
		t.Skipf("E2E database not available: %v", err)
	}
	repo.Close()
}
