// Package mocks provides HTTP mock servers for the upstreams used in E2E tests:
// the company listing CSV, the Yahoo chart API and Alpaca market data bars.
package mocks

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ListingPath is where the mock serves the listing CSV.
const ListingPath = "/listing.csv"

// MockServer provides configurable mock responses for all upstreams.
type MockServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Response configurations
	listing []ListingEntry
	bars    map[string][]Bar // key: ticker as requested (e.g. TCS.NS)

	// Error injection, as HTTP status codes
	listingStatus int
	yahooStatus   int
	alpacaStatus  int

	// Request tracking for assertions
	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method string
	Path   string
	Query  string
}

// NewMockServer creates a new mock server with default responses.
func NewMockServer() *MockServer {
	m := &MockServer{
		bars:       make(map[string][]Bar),
		requestLog: make([]RequestLog, 0),
	}
	m.setDefaults()
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// ListingURL returns the full URL of the listing CSV.
func (m *MockServer) ListingURL() string {
	return m.server.URL + ListingPath
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}

// ServeHTTP implements http.Handler to route requests to appropriate mock handlers.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})
	m.mu.Unlock()

	path := r.URL.Path

	switch {
	case path == ListingPath:
		m.handleListing(w, r)
	case strings.HasPrefix(path, "/v8/finance/chart/"):
		m.handleYahooChart(w, r)
	case strings.HasPrefix(path, "/v2/stocks") && strings.HasSuffix(path, "/bars"):
		m.handleAlpacaBars(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// CountRequests returns how many logged requests have the given path prefix.
func (m *MockServer) CountRequests(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requestLog {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

// ClearRequestLog clears the request log.
func (m *MockServer) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// SetListing replaces the listing CSV rows.
func (m *MockServer) SetListing(entries []ListingEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listing = entries
}

// SetBars configures the daily bars served for a ticker. A ticker with no
// bars is answered as unknown by both providers.
func (m *MockServer) SetBars(ticker string, bars []Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[ticker] = bars
}

// SetListingStatus makes the listing endpoint fail with status (0 clears).
func (m *MockServer) SetListingStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listingStatus = status
}

// SetYahooStatus makes the chart endpoint fail with status (0 clears).
func (m *MockServer) SetYahooStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yahooStatus = status
}

// SetAlpacaStatus makes the bars endpoint fail with status (0 clears).
func (m *MockServer) SetAlpacaStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alpacaStatus = status
}

func (m *MockServer) setDefaults() {
	m.listing = []ListingEntry{
		{Symbol: "TCS", CompanyName: "TATA CONSULTANCY SERVICES LTD."},
		{Symbol: "INFY", CompanyName: "INFOSYS LIMITED"},
		{Symbol: "WIPRO", CompanyName: "WIPRO LTD"},
		{Symbol: "HDFCBANK", CompanyName: "HDFC BANK LTD"},
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.bars["TCS.NS"] = GenerateBars(start, 250, 3500)
	m.bars["INFY.NS"] = GenerateBars(start, 250, 1500)
	m.bars["WIPRO.NS"] = GenerateBars(start, 250, 450)
	// HDFCBANK is listed but has no price history.
}

func (m *MockServer) handleListing(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	status := m.listingStatus
	entries := append([]ListingEntry{}, m.listing...)
	m.mu.RUnlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	ListingCSV(w, entries)
}

func (m *MockServer) handleYahooChart(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	status := m.yahooStatus
	m.mu.RUnlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
	bars, ok := m.barsFor(ticker)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(yahooChart{Chart: yahooChartBody{
			Error: &yahooError{Code: "Not Found", Description: "No data found, symbol may be delisted"},
		}})
		return
	}

	from, to := unixParam(r, "period1", 0), unixParam(r, "period2", math.MaxInt64)
	res := yahooResult{Meta: yahooMeta{Symbol: ticker, Currency: "INR"}}
	var q yahooQuote
	var adj yahooAdjClose
	for _, b := range bars {
		ts := b.Date.Unix()
		if ts < from || ts >= to {
			continue
		}
		res.Timestamp = append(res.Timestamp, ts)
		if b.Missing {
			q.Open = append(q.Open, nil)
			q.High = append(q.High, nil)
			q.Low = append(q.Low, nil)
			q.Close = append(q.Close, nil)
			q.Volume = append(q.Volume, nil)
			adj.AdjClose = append(adj.AdjClose, nil)
			continue
		}
		vol := float64(b.Volume)
		q.Open = append(q.Open, ptr(b.Open))
		q.High = append(q.High, ptr(b.High))
		q.Low = append(q.Low, ptr(b.Low))
		q.Close = append(q.Close, ptr(b.Close))
		q.Volume = append(q.Volume, &vol)
		adj.AdjClose = append(adj.AdjClose, ptr(b.AdjClose))
	}
	res.Indicators = yahooIndicators{Quote: []yahooQuote{q}, AdjClose: []yahooAdjClose{adj}}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(yahooChart{Chart: yahooChartBody{Result: []yahooResult{res}}})
}

// handleAlpacaBars answers both the single-symbol (/v2/stocks/{sym}/bars) and
// multi-symbol (/v2/stocks/bars?symbols=) shapes.
func (m *MockServer) handleAlpacaBars(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	status := m.alpacaStatus
	m.mu.RUnlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	from := timeParam(r, "start", time.Time{})
	to := timeParam(r, "end", time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))

	single := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v2/stocks/"), "/bars")
	var symbols []string
	if r.URL.Path == "/v2/stocks/bars" {
		symbols = strings.Split(r.URL.Query().Get("symbols"), ",")
	} else {
		symbols = []string{single}
	}

	out := make(map[string][]AlpacaBar)
	for _, sym := range symbols {
		bars, ok := m.barsFor(sym)
		if !ok {
			continue
		}
		for _, b := range bars {
			if b.Missing || b.Date.Before(from) || b.Date.After(to) {
				continue
			}
			out[sym] = append(out[sym], AlpacaBar{
				Timestamp: b.Date.Format(time.RFC3339),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			})
		}
	}

	var resp map[string]interface{}
	if r.URL.Path == "/v2/stocks/bars" {
		resp = map[string]interface{}{"bars": out, "next_page_token": nil}
	} else {
		resp = map[string]interface{}{"symbol": single, "bars": out[single], "next_page_token": nil}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (m *MockServer) barsFor(ticker string) ([]Bar, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bars, ok := m.bars[ticker]
	if !ok || len(bars) == 0 {
		return nil, false
	}
	return append([]Bar{}, bars...), true
}

// GenerateBars returns count weekday bars starting at start with a smooth
// oscillating close around base.
func GenerateBars(start time.Time, count int, base float64) []Bar {
	bars := make([]Bar, 0, count)
	day := start
	for len(bars) < count {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			i := float64(len(bars))
			price := base * (1 + 0.05*math.Sin(i/7) + 0.0005*i)
			bars = append(bars, Bar{
				Date:     day,
				Open:     price * 0.995,
				High:     price * 1.01,
				Low:      price * 0.99,
				Close:    price,
				AdjClose: price,
				Volume:   1000000 + int64(len(bars)*1000),
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

// ListingCSV renders entries the way the listing endpoint serves them.
func ListingCSV(w io.Writer, entries []ListingEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Symbol", "Company Name", "Series"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Symbol, e.CompanyName, "EQ"}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func unixParam(r *http.Request, name string, def int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func timeParam(r *http.Request, name string, def time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return t
}

func ptr(v float64) *float64 {
	return &v
}
