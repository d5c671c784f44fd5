// Package charts turns an indicator series into chart-ready line data.
//
// A line is a list of segments; a segment is a run of consecutive defined
// points, so a renderer never draws through an undefined cell.
package charts

import (
	"time"

	"equity-dashboard/models"
)

// RSI guide levels drawn on the RSI chart
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
)

// Point is one plotted value
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Line is a named series split at undefined cells
type Line struct {
	Name     string    `json:"name"`
	Column   string    `json:"column"`
	Segments [][]Point `json:"segments"`
}

// Guide is a horizontal reference line
type Guide struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is one figure
type Chart struct {
	Title  string  `json:"title"`
	YLabel string  `json:"y_label"`
	Lines  []Line  `json:"lines"`
	Guides []Guide `json:"guides,omitempty"`
}

// Set holds the figures selected by the dashboard options. Unselected
// figures are nil.
type Set struct {
	Price      *Chart `json:"price,omitempty"`
	RSI        *Chart `json:"rsi,omitempty"`
	Volatility *Chart `json:"volatility,omitempty"`
}

// Build renders the charts for one company
func Build(company string, s *models.IndicatorSeries, opts models.DashboardOptions) Set {
	var set Set
	if opts.ShowPriceChart() {
		set.Price = PriceChart(company, s, opts)
	}
	if opts.ShowRSI {
		set.RSI = RSIChart(company, s)
	}
	if opts.ShowVolatility {
		set.Volatility = VolatilityChart(company, s)
	}
	return set
}

// PriceChart plots Close with optional moving averages and Bollinger bands.
// Close is always drawn once the figure is shown at all.
func PriceChart(company string, s *models.IndicatorSeries, opts models.DashboardOptions) *Chart {
	c := &Chart{
		Title:  company + " - Price & Indicators",
		YLabel: "Price (INR)",
		Lines:  []Line{NewLine("Close Price", models.ColumnClose, s)},
	}
	if opts.ShowMovingAverages {
		c.Lines = append(c.Lines,
			NewLine("SMA 30", models.ColumnSMA30, s),
			NewLine("SMA 100", models.ColumnSMA100, s),
		)
	}
	if opts.ShowBollingerBands {
		c.Lines = append(c.Lines,
			NewLine("Upper Band", models.ColumnUpper, s),
			NewLine("Lower Band", models.ColumnLower, s),
		)
	}
	return c
}

// RSIChart plots RSI with overbought and oversold guides
func RSIChart(company string, s *models.IndicatorSeries) *Chart {
	return &Chart{
		Title:  company + " - RSI",
		YLabel: "RSI",
		Lines:  []Line{NewLine("RSI", models.ColumnRSI, s)},
		Guides: []Guide{
			{Label: "Overbought", Value: RSIOverbought},
			{Label: "Oversold", Value: RSIOversold},
		},
	}
}

// VolatilityChart plots the 21-day rolling volatility
func VolatilityChart(company string, s *models.IndicatorSeries) *Chart {
	return &Chart{
		Title:  company + " - Volatility (21-day Rolling Std Dev)",
		YLabel: "Volatility",
		Lines:  []Line{NewLine("Volatility", models.ColumnVolatility, s)},
	}
}

// NewLine extracts a column, starting a new segment after every undefined cell
func NewLine(name string, col models.Column, s *models.IndicatorSeries) Line {
	line := Line{Name: name, Column: string(col), Segments: [][]Point{}}
	var seg []Point
	for i := range s.Rows {
		v := s.Rows[i].Value(col)
		if !v.Valid {
			if len(seg) > 0 {
				line.Segments = append(line.Segments, seg)
				seg = nil
			}
			continue
		}
		seg = append(seg, Point{Date: s.Rows[i].Date, Value: v.Float64})
	}
	if len(seg) > 0 {
		line.Segments = append(line.Segments, seg)
	}
	return line
}

// Len returns the number of plotted points across all segments
func (l Line) Len() int {
	n := 0
	for _, seg := range l.Segments {
		n += len(seg)
	}
	return n
}
