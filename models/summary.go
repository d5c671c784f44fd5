package models

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// Summary is the headline block shown above each company's charts
type Summary struct {
	Ticker        string          `json:"ticker"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TradingDays   int             `json:"trading_days"`
	LastClose     decimal.Decimal `json:"last_close"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	PeriodHigh    decimal.Decimal `json:"period_high"`
	PeriodLow     decimal.Decimal `json:"period_low"`
	LastRSI       null.Float      `json:"last_rsi"`
}

// NewSummary derives the summary from an indicator series. Missing closes are
// skipped; an all-missing series yields a zero summary.
func NewSummary(s *IndicatorSeries) Summary {
	sum := Summary{Ticker: s.Ticker, TradingDays: s.Len()}
	if s.Len() == 0 {
		return sum
	}
	sum.From = s.Rows[0].Date
	sum.To = s.Rows[len(s.Rows)-1].Date
	sum.LastRSI = s.Rows[len(s.Rows)-1].RSI

	var first, last null.Float
	for _, r := range s.Rows {
		if !r.Close.Valid {
			continue
		}
		if !first.Valid {
			first = r.Close
		}
		last = r.Close

		high := r.High
		if !high.Valid {
			high = r.Close
		}
		low := r.Low
		if !low.Valid {
			low = r.Close
		}
		h := decimal.NewFromFloat(high.Float64)
		l := decimal.NewFromFloat(low.Float64)
		if sum.PeriodHigh.IsZero() || h.GreaterThan(sum.PeriodHigh) {
			sum.PeriodHigh = h
		}
		if sum.PeriodLow.IsZero() || l.LessThan(sum.PeriodLow) {
			sum.PeriodLow = l
		}
	}
	if !last.Valid {
		return sum
	}

	firstClose := decimal.NewFromFloat(first.Float64)
	sum.LastClose = decimal.NewFromFloat(last.Float64)
	sum.Change = sum.LastClose.Sub(firstClose)
	if !firstClose.IsZero() {
		sum.ChangePercent = sum.Change.Div(firstClose).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return sum
}
