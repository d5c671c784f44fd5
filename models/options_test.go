package models

import (
	"errors"
	"testing"
	"time"
)

func TestDashboardOptions_Validate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		opts      DashboardOptions
		wantErr   bool
		wantRange bool
	}{
		{"valid", DashboardOptions{Companies: []string{"A"}, Start: start, End: end}, false, false},
		{"no companies", DashboardOptions{Start: start, End: end}, true, false},
		{"missing dates", DashboardOptions{Companies: []string{"A"}}, true, true},
		{"inverted", DashboardOptions{Companies: []string{"A"}, Start: end, End: start}, true, true},
		{"same day", DashboardOptions{Companies: []string{"A"}, Start: start, End: start}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantRange && !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestDashboardOptions_ShowPriceChart(t *testing.T) {
	if (&DashboardOptions{}).ShowPriceChart() {
		t.Error("price chart should be hidden when all toggles are off")
	}
	if !(&DashboardOptions{ShowBollingerBands: true}).ShowPriceChart() {
		t.Error("price chart should be drawn when bands are shown")
	}
}
