package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the calendar date format used on the wire and in exports
const DateLayout = "2006-01-02"

// PricePoint is one trading day of OHLCV data. Any field may be missing in raw
// provider data; a prepared series only has missing values in leading rows.
type PricePoint struct {
	Date   time.Time  `json:"date"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Float `json:"volume"`
}

// PriceSeries is an ordered daily series for one ticker
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points in the series
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// IsEmpty reports whether the series has no points
func (s *PriceSeries) IsEmpty() bool {
	return s.Len() == 0
}

// Closes returns the close column, preserving missing cells
func (s *PriceSeries) Closes() []null.Float {
	closes := make([]null.Float, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Clone returns a deep copy of the series
func (s *PriceSeries) Clone() *PriceSeries {
	if s == nil {
		return nil
	}
	out := *s
	out.Points = append([]PricePoint(nil), s.Points...)
	return &out
}
