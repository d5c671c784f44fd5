package services

import (
	"context"
	"fmt"
	"time"

	"equity-dashboard/models"
	"equity-dashboard/observability"
	"equity-dashboard/series"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/guregu/null/v6"
)

// alpacaBarsClient is the slice of the marketdata client we use
type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaService fetches daily history from the Alpaca market data API
type AlpacaService struct {
	dataClient alpacaBarsClient
	retry      RetryConfig
}

// NewAlpacaService creates a new AlpacaService instance. An empty dataURL uses
// the client's default host.
func NewAlpacaService(apiKey, apiSecret, dataURL string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   dataURL,
	})
	return newAlpacaServiceWithClient(dataClient)
}

// newAlpacaServiceWithClient creates an AlpacaService with a custom client (for testing)
func newAlpacaServiceWithClient(client alpacaBarsClient) *AlpacaService {
	return &AlpacaService{
		dataClient: client,
		retry:      DefaultRetryConfig,
	}
}

func (s *AlpacaService) Name() string { return BreakerAlpaca }

// FetchSeries returns split and dividend adjusted daily bars for [start, end)
func (s *AlpacaService) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error) {
	bars, err := callExternal(ctx, BreakerAlpaca, "get_bars", s.retry, func() ([]marketdata.Bar, error) {
		return s.dataClient.GetBars(ticker, marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Adjustment: marketdata.All,
			Start:      start,
			// the API treats End as inclusive
			End: end.Add(-time.Second),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpaca %s: %w: no bars between %s and %s", ticker, models.ErrDataUnavailable,
			start.Format(models.DateLayout), end.Format(models.DateLayout))
	}

	out := &models.PriceSeries{
		Ticker: ticker,
		Start:  start,
		End:    end,
		Points: make([]models.PricePoint, 0, len(bars)),
	}
	for _, bar := range bars {
		out.Points = append(out.Points, models.PricePoint{
			Date:   series.CalendarDay(bar.Timestamp),
			Open:   null.FloatFrom(bar.Open),
			High:   null.FloatFrom(bar.High),
			Low:    null.FloatFrom(bar.Low),
			Close:  null.FloatFrom(bar.Close),
			Volume: null.FloatFrom(float64(bar.Volume)),
		})
	}

	observability.WithTicker(ticker).Debug("fetched alpaca bars", "points", out.Len())
	return out, nil
}
