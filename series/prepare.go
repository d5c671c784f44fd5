// Package series turns raw provider output into a gap-free, strictly ordered
// daily series ready for the indicator engine.
package series

import (
	"fmt"
	"sort"
	"time"

	"equity-dashboard/models"

	"github.com/guregu/null/v6"
)

// Prepare normalises dates to calendar days, orders the points ascending,
// drops duplicate days (the later point wins) and forward-fills every OHLCV
// field. A leading missing value stays missing. The input is not modified.
func Prepare(raw *models.PriceSeries) (*models.PriceSeries, error) {
	if raw.IsEmpty() {
		ticker := ""
		if raw != nil {
			ticker = raw.Ticker
		}
		return nil, fmt.Errorf("%s: no price points in range: %w", ticker, models.ErrDataUnavailable)
	}

	out := raw.Clone()
	for i := range out.Points {
		out.Points[i].Date = CalendarDay(out.Points[i].Date)
	}
	sort.SliceStable(out.Points, func(i, j int) bool {
		return out.Points[i].Date.Before(out.Points[j].Date)
	})
	out.Points = dedupe(out.Points)

	var last models.PricePoint
	for i := range out.Points {
		p := &out.Points[i]
		p.Open = fill(p.Open, &last.Open)
		p.High = fill(p.High, &last.High)
		p.Low = fill(p.Low, &last.Low)
		p.Close = fill(p.Close, &last.Close)
		p.Volume = fill(p.Volume, &last.Volume)
	}
	return out, nil
}

// CalendarDay truncates t to midnight UTC of its own calendar date
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dedupe keeps the last point of each run of equal dates. points must be sorted.
func dedupe(points []models.PricePoint) []models.PricePoint {
	out := points[:0]
	for i, p := range points {
		if i+1 < len(points) && points[i+1].Date.Equal(p.Date) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func fill(v null.Float, last *null.Float) null.Float {
	if v.Valid {
		*last = v
		return v
	}
	return *last
}
