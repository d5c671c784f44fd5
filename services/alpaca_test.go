package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"equity-dashboard/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type mockAlpacaDataClient struct {
	bars []marketdata.Bar
	err  error
	req  marketdata.GetBarsRequest
	sym  string
}

func (m *mockAlpacaDataClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.sym = symbol
	m.req = req
	return m.bars, m.err
}

func newTestAlpaca(client alpacaBarsClient) *AlpacaService {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	s := newAlpacaServiceWithClient(client)
	s.retry = fastRetry
	return s
}

func TestNewAlpacaService(t *testing.T) {
	s := NewAlpacaService("key", "secret", "")
	if s == nil || s.dataClient == nil {
		t.Fatal("expected service with data client")
	}
	if s.Name() != BreakerAlpaca {
		t.Errorf("Name = %q", s.Name())
	}
}

func TestAlpacaService_FetchSeries(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	client := &mockAlpacaDataClient{bars: []marketdata.Bar{
		{Timestamp: time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC), Open: 185, High: 188, Low: 183, Close: 185.6, Volume: 82488700},
		{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, ny).UTC(), Open: 184, High: 185.9, Low: 183.4, Close: 184.2, Volume: 58414500},
	}}
	svc := newTestAlpaca(client)

	start, end := date("2024-01-01"), date("2024-01-04")
	s, err := svc.FetchSeries(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}

	if client.sym != "AAPL" {
		t.Errorf("symbol = %q", client.sym)
	}
	if client.req.Adjustment != marketdata.All {
		t.Errorf("expected all adjustments, got %q", client.req.Adjustment)
	}
	if client.req.TimeFrame != marketdata.OneDay {
		t.Errorf("expected daily timeframe, got %v", client.req.TimeFrame)
	}
	if !client.req.End.Before(end) {
		t.Errorf("request end %v should be before exclusive end %v", client.req.End, end)
	}

	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", s.Len())
	}
	if got := s.Points[1].Date.Format(models.DateLayout); got != "2024-01-03" {
		t.Errorf("second date = %s", got)
	}
	if s.Points[0].Volume.Float64 != 82488700 {
		t.Errorf("volume = %v", s.Points[0].Volume.Float64)
	}
}

func TestAlpacaService_NoBars(t *testing.T) {
	svc := newTestAlpaca(&mockAlpacaDataClient{})
	_, err := svc.FetchSeries(context.Background(), "AAPL", date("2024-01-01"), date("2024-01-04"))
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestAlpacaService_Error(t *testing.T) {
	client := &mockAlpacaDataClient{err: errors.New("connection reset")}
	svc := newTestAlpaca(client)
	_, err := svc.FetchSeries(context.Background(), "AAPL", date("2024-01-01"), date("2024-01-04"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, models.ErrDataUnavailable) {
		t.Error("transport errors are not data unavailable")
	}
}
