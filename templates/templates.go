// Package templates renders the dashboard HTML with templ components.
// The components live in index.templ; run `templ generate` after editing it.
package templates

import (
	"encoding/json"
	"fmt"

	"equity-dashboard/charts"
	"equity-dashboard/dashboard"
	"equity-dashboard/export"
	"equity-dashboard/models"
)

// Title is shown in the page header and browser tab
const Title = "Equity Indicator Dashboard"

// Page is the data behind the index page
type Page struct {
	Options   models.DashboardOptions
	Companies []string
	Result    *dashboard.Result
	Error     string
}

type indicatorFlag struct {
	Name    string
	Label   string
	Checked bool
}

func indicatorFlags(opts models.DashboardOptions) []indicatorFlag {
	return []indicatorFlag{
		{"show_close", "Close Price", opts.ShowClose},
		{"show_moving_averages", "Moving Averages", opts.ShowMovingAverages},
		{"show_bollinger_bands", "Bollinger Bands", opts.ShowBollingerBands},
		{"show_rsi", "RSI", opts.ShowRSI},
		{"show_volatility", "Volatility", opts.ShowVolatility},
	}
}

type summaryTerm struct {
	Term  string
	Value string
}

func summaryTerms(r *dashboard.Report) []summaryTerm {
	s := r.Summary
	if s == nil {
		return nil
	}
	terms := []summaryTerm{
		{"Ticker", r.Ticker},
		{"Trading days", fmt.Sprint(s.TradingDays)},
		{"Last close", s.LastClose.StringFixed(2)},
		{"Change", fmt.Sprintf("%s (%s%%)", s.Change.StringFixed(2), s.ChangePercent.StringFixed(2))},
		{"Period high", s.PeriodHigh.StringFixed(2)},
		{"Period low", s.PeriodLow.StringFixed(2)},
	}
	if s.LastRSI.Valid {
		terms = append(terms, summaryTerm{"RSI", fmt.Sprintf("%.2f", s.LastRSI.Float64)})
	}
	return terms
}

// chartData encodes each enabled chart for the client-side plotter
func chartData(r *dashboard.Report) []string {
	var out []string
	for _, c := range []*charts.Chart{r.Charts.Price, r.Charts.RSI, r.Charts.Volatility} {
		if c == nil {
			continue
		}
		data, err := json.Marshal(c)
		if err != nil {
			continue
		}
		out = append(out, string(data))
	}
	return out
}

func previewHeading() string {
	return fmt.Sprintf("Last %d Days of Data", export.DefaultPreviewRows)
}

func previewRows(r *dashboard.Report) []models.IndicatorRow {
	return export.Tail(r.Series, export.DefaultPreviewRows)
}
