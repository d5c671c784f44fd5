package app

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"equity-dashboard/config"
	"equity-dashboard/dashboard"
	"equity-dashboard/models"
	"equity-dashboard/repository"
	"equity-dashboard/services"
)

// testConfig returns a test configuration
func testConfig() *config.Config {
	return config.NewTestConfig()
}

// testApp creates an App with test config for testing
func testApp(repo RepositoryInterface, pipeline PipelineInterface) *App {
	return New(testConfig(), repo, pipeline, "mock")
}

// mockPipeline blocks in Run until release is closed, when set
type mockPipeline struct {
	started chan struct{}
	release chan struct{}
}

func (m *mockPipeline) Run(ctx context.Context, opts models.DashboardOptions) (*dashboard.Result, error) {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	return &dashboard.Result{Options: opts}, nil
}

func (m *mockPipeline) AnalyzeCompany(ctx context.Context, company string, start, end time.Time) (*dashboard.Analysis, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	return &dashboard.Analysis{Company: company, Ticker: "TCS.NS", Series: &models.IndicatorSeries{}}, nil
}

func (m *mockPipeline) Resolver() services.SymbolResolver {
	return services.NewResolver(map[string]string{"TATA CONSULTANCY SERVICES LTD.": "TCS.NS"})
}

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func TestNew_WithMaxInFlight(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Dashboard.MaxInFlight = 5
	a := New(cfg, nil, nil, "yahoo")

	if a.DashboardSemCapacity() != 5 {
		t.Errorf("expected capacity 5, got %d", a.DashboardSemCapacity())
	}
	if a.Provider() != "yahoo" {
		t.Errorf("expected provider yahoo, got %s", a.Provider())
	}
}

func TestApp_RunDashboard_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.Dashboard.MaxInFlight = 1
	p := &mockPipeline{started: make(chan struct{}, 1), release: make(chan struct{})}
	a := New(cfg, nil, p, "mock")

	opts := a.DefaultOptions()
	done := make(chan error, 1)
	go func() {
		_, err := a.RunDashboard(context.Background(), opts)
		done <- err
	}()
	<-p.started

	if _, err := a.RunDashboard(context.Background(), opts); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while slot is held, got %v", err)
	}

	close(p.release)
	if err := <-done; err != nil {
		t.Errorf("first request failed: %v", err)
	}

	if _, err := a.RunDashboard(context.Background(), opts); err != nil {
		t.Errorf("expected slot to be released, got %v", err)
	}
}

func TestApp_RunDashboard_TooManyCompanies(t *testing.T) {
	cfg := testConfig()
	cfg.Dashboard.MaxCompanies = 2
	a := New(cfg, nil, &mockPipeline{}, "mock")

	opts := a.DefaultOptions()
	opts.Companies = []string{"A", "B", "C"}
	if _, err := a.RunDashboard(context.Background(), opts); !errors.Is(err, ErrTooManyCompanies) {
		t.Errorf("expected ErrTooManyCompanies, got %v", err)
	}
}

func TestApp_NoPipeline(t *testing.T) {
	a := testApp(nil, nil)

	if a.Resolver() != nil {
		t.Error("expected nil resolver without pipeline")
	}
	if _, err := a.RunDashboard(context.Background(), a.DefaultOptions()); err == nil {
		t.Error("expected error without pipeline")
	}
	if _, err := a.Analyze(context.Background(), "X", testStart, testEnd); err == nil {
		t.Error("expected error without pipeline")
	}
}

func TestApp_Analyze(t *testing.T) {
	a := testApp(nil, &mockPipeline{})

	got, err := a.Analyze(context.Background(), "TATA CONSULTANCY SERVICES LTD.", testStart, testEnd)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.Ticker != "TCS.NS" {
		t.Errorf("expected TCS.NS, got %s", got.Ticker)
	}

	if _, err := a.Analyze(context.Background(), "X", testEnd, testStart); !errors.Is(err, models.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestApp_DefaultOptionsIsCopy(t *testing.T) {
	a := testApp(nil, nil)
	opts := a.DefaultOptions()
	opts.Companies[0] = "CHANGED"

	if a.Config().Defaults.Companies[0] == "CHANGED" {
		t.Error("DefaultOptions must not alias the config slice")
	}
}

func TestApp_GetRuns(t *testing.T) {
	t.Run("repository not initialized", func(t *testing.T) {
		a := testApp(nil, nil)
		if _, err := a.GetRuns(context.Background(), "", 10); !errors.Is(err, ErrNoDatabase) {
			t.Errorf("expected ErrNoDatabase, got %v", err)
		}
		if _, err := a.GetRunByID(context.Background(), "550e8400-e29b-41d4-a716-446655440000"); !errors.Is(err, ErrNoDatabase) {
			t.Errorf("expected ErrNoDatabase, got %v", err)
		}
	})
}

func TestApp_Shutdown(t *testing.T) {
	ctx := context.Background()

	t.Run("with repository", func(t *testing.T) {
		connString := os.Getenv("DATABASE_URL")
		if connString == "" {
			t.Skip("DATABASE_URL not set")
		}
		repo, err := repository.NewRepository(ctx, connString)
		if err != nil {
			t.Skip("database not available")
		}

		a := testApp(repo, nil)
		a.Shutdown(ctx)
	})

	t.Run("without repository", func(t *testing.T) {
		a := testApp(nil, nil)
		a.Shutdown(ctx) // Should not panic
	})
}

func TestParseUUID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "valid UUID", input: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "invalid UUID format", input: "invalid-uuid", wantError: true},
		{name: "empty string", input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUUID(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseUUID() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
