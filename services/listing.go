package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"equity-dashboard/models"
	"equity-dashboard/observability"
)

// DefaultListingURL is the public NSE listing used when none is configured
const DefaultListingURL = "https://raw.githubusercontent.com/datasets/nse-stocks/master/data/nse-listed.csv"

// DefaultTickerSuffix turns an NSE symbol into a Yahoo ticker
const DefaultTickerSuffix = ".NS"

var (
	nameHeaders   = []string{"company name", "name of company", "name"}
	symbolHeaders = []string{"symbol"}
)

// Company is one listed company
type Company struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// Resolver maps company names to tickers. It is built once and never
// modified, so it is safe to share between goroutines.
type Resolver struct {
	byName    map[string]string
	byFolded  map[string]string
	companies []Company
}

// NewResolver builds a resolver from company name to ticker pairs
func NewResolver(entries map[string]string) *Resolver {
	r := &Resolver{
		byName:    make(map[string]string, len(entries)),
		byFolded:  make(map[string]string, len(entries)),
		companies: make([]Company, 0, len(entries)),
	}
	for name, ticker := range entries {
		r.byName[name] = ticker
		r.byFolded[fold(name)] = ticker
		r.companies = append(r.companies, Company{Name: name, Ticker: ticker})
	}
	sort.Slice(r.companies, func(i, j int) bool {
		return r.companies[i].Name < r.companies[j].Name
	})
	return r
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Resolve returns the ticker for a company name. An exact match wins; otherwise
// the name is compared ignoring case and surrounding or repeated whitespace.
func (r *Resolver) Resolve(company string) (string, error) {
	if t, ok := r.byName[company]; ok {
		return t, nil
	}
	if t, ok := r.byFolded[fold(company)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrSymbolNotFound, company)
}

// Companies returns all company names in sorted order
func (r *Resolver) Companies() []string {
	names := make([]string, len(r.companies))
	for i, c := range r.companies {
		names[i] = c.Name
	}
	return names
}

// Search returns companies whose name or ticker contains query, case-insensitively.
// Names starting with the query sort first. A limit of 0 or less means no limit.
func (r *Resolver) Search(query string, limit int) []Company {
	q := fold(query)
	var prefix, rest []Company
	for _, c := range r.companies {
		name := strings.ToLower(c.Name)
		switch {
		case q == "" || strings.HasPrefix(name, q):
			prefix = append(prefix, c)
		case strings.Contains(name, q), strings.Contains(strings.ToLower(c.Ticker), q):
			rest = append(rest, c)
		}
	}
	out := append(prefix, rest...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Company{}
	}
	return out
}

// Len returns the number of listed companies
func (r *Resolver) Len() int {
	return len(r.companies)
}

// ParseListing reads a listing CSV with a company name and a symbol column and
// appends suffix to every symbol. Later rows win on duplicate names.
func ParseListing(rd io.Reader, suffix string) (*Resolver, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing header: %w", err)
	}

	nameIdx, symIdx := findColumn(header, nameHeaders), findColumn(header, symbolHeaders)
	if nameIdx < 0 || symIdx < 0 {
		return nil, fmt.Errorf("listing header %v lacks company name or symbol column", header)
	}

	entries := make(map[string]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read listing: %w", err)
		}
		if nameIdx >= len(rec) || symIdx >= len(rec) {
			continue
		}
		name, sym := strings.TrimSpace(rec[nameIdx]), strings.TrimSpace(rec[symIdx])
		if name == "" || sym == "" {
			continue
		}
		entries[name] = sym + suffix
	}
	if len(entries) == 0 {
		return nil, errors.New("listing contains no companies")
	}
	return NewResolver(entries), nil
}

func findColumn(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), want) {
				return i
			}
		}
	}
	return -1
}

// ListingService downloads the symbol listing
type ListingService struct {
	url        string
	suffix     string
	httpClient *http.Client
	retry      RetryConfig
}

// NewListingService creates a new ListingService instance
func NewListingService(url, suffix string, timeout time.Duration) *ListingService {
	if url == "" {
		url = DefaultListingURL
	}
	return &ListingService{
		url:        url,
		suffix:     suffix,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryConfig,
	}
}

// Load downloads and parses the listing into a Resolver
func (s *ListingService) Load(ctx context.Context) (*Resolver, error) {
	r, err := callExternal(ctx, BreakerListing, "download", s.retry, func() (*Resolver, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, Permanent(fmt.Errorf("failed to build listing request: %w", err))
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch listing: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, checkStatus(BreakerListing, resp.StatusCode, body)
		}
		r, err := ParseListing(resp.Body, s.suffix)
		if err != nil {
			return nil, Permanent(err)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	observability.Info("symbol listing loaded", "companies", r.Len(), "url", s.url)
	observability.GetMetrics().SetListingSize(r.Len())
	return r, nil
}
