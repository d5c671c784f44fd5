package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if m.PipelineRequestsTotal == nil || m.PipelineDuration == nil || m.PipelineErrorsTotal == nil {
		t.Error("pipeline metrics not initialized")
	}
	if m.RowsComputed == nil || m.ListingSize == nil || m.CacheLookupsTotal == nil {
		t.Error("series metrics not initialized")
	}
	if m.ExternalAPIRequestsTotal == nil || m.DBQueryTotal == nil || m.HTTPRequestsTotal == nil {
		t.Error("infrastructure metrics not initialized")
	}
	if m.CircuitBreakerState == nil || m.CircuitBreakerTrips == nil {
		t.Error("circuit breaker metrics not initialized")
	}
}

func TestPipelineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordPipelineRequest("TCS.NS")
	m.RecordPipelineRequest("TCS.NS")
	m.RecordPipelineRequest("INFY.NS")
	m.RecordPipelineError("INFY.NS", "data_unavailable")
	m.RecordPipelineDuration("TCS.NS", "success", 120*time.Millisecond)
	m.RecordRowsComputed(1300)

	if got := testutil.ToFloat64(m.PipelineRequestsTotal.WithLabelValues("TCS.NS")); got != 2 {
		t.Errorf("Expected TCS.NS count to be 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.PipelineErrorsTotal.WithLabelValues("INFY.NS", "data_unavailable")); got != 1 {
		t.Errorf("Expected INFY.NS data_unavailable count to be 1, got %f", got)
	}
	if got := testutil.CollectAndCount(m.RowsComputed); got != 1 {
		t.Errorf("Expected one rows_computed series, got %d", got)
	}
}

func TestListingAndCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetListingSize(2150)
	m.RecordCacheLookup("hit")
	m.RecordCacheLookup("miss")
	m.RecordCacheLookup("miss")

	if got := testutil.ToFloat64(m.ListingSize); got != 2150 {
		t.Errorf("Expected listing size 2150, got %f", got)
	}
	if got := testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("Expected 2 misses, got %f", got)
	}
}

func TestExternalAPIMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIRequest("yahoo", "get_chart")
	m.RecordExternalAPIRequest("yahoo", "get_chart")
	m.RecordExternalAPIRequest("listing", "download")
	m.RecordExternalAPIError("yahoo", "get_chart", "timeout")
	m.RecordExternalAPIDuration("yahoo", "get_chart", 300*time.Millisecond)

	if got := testutil.ToFloat64(m.ExternalAPIRequestsTotal.WithLabelValues("yahoo", "get_chart")); got != 2 {
		t.Errorf("Expected yahoo get_chart count to be 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.ExternalAPIErrorsTotal.WithLabelValues("yahoo", "get_chart", "timeout")); got != 1 {
		t.Errorf("Expected yahoo timeout count to be 1, got %f", got)
	}
}

func TestDBMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDBQuery("select", "market_data_cache", 10*time.Millisecond)
	m.RecordDBQuery("insert", "analysis_runs", 5*time.Millisecond)
	m.RecordDBError("select", "market_data_cache")

	if got := testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "market_data_cache")); got != 1 {
		t.Errorf("Expected select count to be 1, got %f", got)
	}
	if got := testutil.ToFloat64(m.DBErrorsTotal.WithLabelValues("select", "market_data_cache")); got != 1 {
		t.Errorf("Expected select error count to be 1, got %f", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("GET", "/api/health", "200", 10*time.Millisecond, 256)
	m.RecordHTTPRequest("GET", "/api/dashboard", "200", 2*time.Second, 40960)
	m.RecordHTTPRequest("GET", "/api/resolve", "404", 5*time.Millisecond, 128)

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/health", "200")); got != 1 {
		t.Errorf("Expected GET /api/health 200 count to be 1, got %f", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/resolve", "404")); got != 1 {
		t.Errorf("Expected GET /api/resolve 404 count to be 1, got %f", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetCircuitBreakerState("yahoo", 0)
	m.SetCircuitBreakerState("listing", 2)
	m.RecordCircuitBreakerTrip("listing")
	m.RecordCircuitBreakerTrip("listing")

	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("listing")); got != 2 {
		t.Errorf("Expected listing state to be 2 (open), got %f", got)
	}
	if got := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("listing")); got != 2 {
		t.Errorf("Expected listing trips to be 2, got %f", got)
	}
}

func TestTimer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	timer := m.NewTimer()
	time.Sleep(10 * time.Millisecond)
	if d := timer.Duration(); d < 10*time.Millisecond {
		t.Errorf("Expected duration to be at least 10ms, got %v", d)
	}

	timer.ObservePipeline("TCS.NS", "success")
	timer.ObserveExternalAPI("yahoo", "get_chart")
	timer.ObserveDB("select", "analysis_runs")

	if got := testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "analysis_runs")); got != 1 {
		t.Errorf("ObserveDB should count the query, got %f", got)
	}
}

func TestGetMetrics_Singleton(t *testing.T) {
	original := globalMetrics
	defer func() { globalMetrics = original }()

	globalMetrics = NewMetrics(prometheus.NewRegistry())

	m1 := GetMetrics()
	if m1 == nil {
		t.Fatal("GetMetrics returned nil")
	}
	if m2 := GetMetrics(); m1 != m2 {
		t.Error("GetMetrics should return the same instance")
	}
}

func TestGetMetrics_ConcurrentFirstUse(t *testing.T) {
	original := globalMetrics
	originalReg := prometheus.DefaultRegisterer
	defer func() {
		globalMetrics = original
		prometheus.DefaultRegisterer = originalReg
	}()

	// a second registration on the same registry would panic
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	globalMetrics = nil

	const workers = 16
	got := make([]*Metrics, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = GetMetrics()
		}(i)
	}
	wg.Wait()

	for i, m := range got {
		if m == nil || m != got[0] {
			t.Fatalf("worker %d got a different instance", i)
		}
	}
}
