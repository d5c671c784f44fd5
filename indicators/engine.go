// Package indicators computes the derived columns of an indicator series.
//
// Every function here is pure: the output depends only on the input series and
// the window constants below. Rolling statistics use a trailing window that ends
// at, and includes, the current row. A cell whose window reaches before the
// first row, or covers a missing input, is left null rather than zero.
package indicators

import (
	"equity-dashboard/models"

	"github.com/guregu/null/v6"
)

// Window constants. They are fixed; tests and callers refer to them by name.
const (
	SMAShortWindow   = 30
	SMALongWindow    = 100
	EMASpan          = 30
	BollingerWindow  = 20
	BollingerWidth   = 2.0
	VolatilityWindow = 21
	RSIWindow        = 14
)

// EMASmoothing is the EMA_30 smoothing factor, 2/(span+1)
const EMASmoothing = 2.0 / (EMASpan + 1)

// Compute derives every indicator column from a prepared series
func Compute(s *models.PriceSeries) *models.IndicatorSeries {
	out := &models.IndicatorSeries{Ticker: s.Ticker}
	n := s.Len()
	if n == 0 {
		out.Rows = []models.IndicatorRow{}
		return out
	}

	closes := s.Closes()
	returns := DailyReturns(closes)
	sma30 := RollingMean(closes, SMAShortWindow)
	sma100 := RollingMean(closes, SMALongWindow)
	ema30 := EMA(closes, EMASmoothing)
	vol := RollingStd(returns, VolatilityWindow)
	bbMA := RollingMean(closes, BollingerWindow)
	bbSTD := RollingStd(closes, BollingerWindow)
	upper, lower := Bands(bbMA, bbSTD, BollingerWidth)
	rsi := RSI(closes, RSIWindow)

	out.Rows = make([]models.IndicatorRow, n)
	for i, p := range s.Points {
		out.Rows[i] = models.IndicatorRow{
			PricePoint:  p,
			DailyReturn: returns[i],
			SMA30:       sma30[i],
			SMA100:      sma100[i],
			EMA30:       ema30[i],
			Volatility:  vol[i],
			BBMA20:      bbMA[i],
			BBSTD:       bbSTD[i],
			Upper:       upper[i],
			Lower:       lower[i],
			RSI:         rsi[i],
		}
	}
	return out
}

// DailyReturns returns the fractional change from the previous close. Row 0 is
// null, as is any row whose previous close is zero.
func DailyReturns(closes []null.Float) []null.Float {
	out := make([]null.Float, len(closes))
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if !prev.Valid || !cur.Valid || prev.Float64 == 0 {
			continue
		}
		out[i] = null.FloatFrom((cur.Float64 - prev.Float64) / prev.Float64)
	}
	return out
}

// EMA computes an unadjusted exponential moving average with smoothing alpha,
// seeded with the first defined value. Missing inputs produce a null cell and
// leave the running average untouched.
func EMA(values []null.Float, alpha float64) []null.Float {
	out := make([]null.Float, len(values))
	var ema float64
	seeded := false
	for i, v := range values {
		if !v.Valid {
			continue
		}
		if !seeded {
			ema = v.Float64
			seeded = true
		} else {
			ema = alpha*v.Float64 + (1-alpha)*ema
		}
		out[i] = null.FloatFrom(ema)
	}
	return out
}

// Bands returns mid ± width·std wherever both inputs are defined
func Bands(mid, std []null.Float, width float64) (upper, lower []null.Float) {
	upper = make([]null.Float, len(mid))
	lower = make([]null.Float, len(mid))
	for i := range mid {
		if !mid[i].Valid || !std[i].Valid {
			continue
		}
		upper[i] = null.FloatFrom(mid[i].Float64 + width*std[i].Float64)
		lower[i] = null.FloatFrom(mid[i].Float64 - width*std[i].Float64)
	}
	return upper, lower
}
