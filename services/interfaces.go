package services

import (
	"context"
	"time"

	"equity-dashboard/models"
)

// PriceFetcher retrieves a daily OHLCV series adjusted for splits and dividends.
// The range is [start, end): end is exclusive. An empty range yields an error
// wrapping models.ErrDataUnavailable.
type PriceFetcher interface {
	Name() string
	FetchSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error)
}

// SymbolResolver maps a listed company name to its ticker
type SymbolResolver interface {
	Resolve(company string) (string, error)
	Companies() []string
	Search(query string, limit int) []Company
	Len() int
}

// Compile-time interface verification
var _ PriceFetcher = (*YahooService)(nil)
var _ PriceFetcher = (*AlpacaService)(nil)
var _ SymbolResolver = (*Resolver)(nil)
