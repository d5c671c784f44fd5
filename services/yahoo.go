package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"equity-dashboard/models"
	"equity-dashboard/observability"
	"equity-dashboard/series"

	"github.com/guregu/null/v6"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart host
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooService fetches daily history from the Yahoo Finance v8 chart API
type YahooService struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retry      RetryConfig
}

// NewYahooService creates a new YahooService instance
func NewYahooService(baseURL string, timeout time.Duration) *YahooService {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  "Mozilla/5.0",
		retry:      DefaultRetryConfig,
	}
}

func (s *YahooService) Name() string { return BreakerYahoo }

// chartResponse is the subset of the chart payload we read. Nulls in the quote
// arrays decode to nil pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries returns adjusted daily bars for [start, end)
func (s *YahooService) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (*models.PriceSeries, error) {
	ps, err := callExternal(ctx, BreakerYahoo, "get_chart", s.retry, func() (*models.PriceSeries, error) {
		chart, err := s.getChart(ctx, ticker, start, end)
		if err != nil {
			return nil, err
		}
		return chart.toSeries(ticker, start, end)
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	observability.WithTicker(ticker).Debug("fetched yahoo chart", "points", ps.Len())
	return ps, nil
}

func (s *YahooService) getChart(ctx context.Context, ticker string, start, end time.Time) (*chartResponse, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")
	u := s.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("failed to build chart request: %w", err))
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart body: %w", err)
	}
	if err := checkStatus(BreakerYahoo, resp.StatusCode, body); err != nil {
		return nil, err
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, Permanent(fmt.Errorf("failed to decode chart: %w", err))
	}
	if e := chart.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", models.ErrDataUnavailable, e.Code, e.Description)
	}
	return &chart, nil
}

// toSeries converts the chart into a price series. Prices are scaled by the
// adjclose/close ratio of each row so splits and dividends are folded in; rows
// without an adjusted close keep their raw prices. Volume is never scaled.
func (c *chartResponse) toSeries(ticker string, start, end time.Time) (*models.PriceSeries, error) {
	if len(c.Chart.Result) == 0 || len(c.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%w: no rows between %s and %s", models.ErrDataUnavailable,
			start.Format(models.DateLayout), end.Format(models.DateLayout))
	}
	res := c.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: chart has no quote block", models.ErrDataUnavailable)
	}
	q := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	out := &models.PriceSeries{Ticker: ticker, Start: start, End: end}
	startDay, endDay := series.CalendarDay(start), series.CalendarDay(end)
	for i, ts := range res.Timestamp {
		day := series.CalendarDay(time.Unix(ts+res.Meta.GMTOffset, 0).UTC())
		if day.Before(startDay) || !day.Before(endDay) {
			continue
		}

		closeV := at(q.Close, i)
		ratio := 1.0
		if a := at(adj, i); a.Valid && closeV.Valid && closeV.Float64 != 0 {
			ratio = a.Float64 / closeV.Float64
		}
		out.Points = append(out.Points, models.PricePoint{
			Date:   day,
			Open:   scale(at(q.Open, i), ratio),
			High:   scale(at(q.High, i), ratio),
			Low:    scale(at(q.Low, i), ratio),
			Close:  scale(closeV, ratio),
			Volume: at(q.Volume, i),
		})
	}
	if out.IsEmpty() {
		return nil, fmt.Errorf("%w: no rows between %s and %s", models.ErrDataUnavailable,
			start.Format(models.DateLayout), end.Format(models.DateLayout))
	}
	return out, nil
}

func at(values []*float64, i int) null.Float {
	if i >= len(values) || values[i] == nil {
		return null.Float{}
	}
	return null.FloatFrom(*values[i])
}

func scale(v null.Float, ratio float64) null.Float {
	if !v.Valid {
		return v
	}
	return null.FloatFrom(v.Float64 * ratio)
}
