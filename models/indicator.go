package models

import (
	"github.com/guregu/null/v6"
)

// IndicatorRow is a prepared price point extended with derived columns.
// A column is null while its window still reaches before the first row.
type IndicatorRow struct {
	PricePoint
	DailyReturn null.Float `json:"daily_return"`
	SMA30       null.Float `json:"sma_30"`
	SMA100      null.Float `json:"sma_100"`
	EMA30       null.Float `json:"ema_30"`
	Volatility  null.Float `json:"volatility"`
	BBMA20      null.Float `json:"bb_ma20"`
	BBSTD       null.Float `json:"bb_std"`
	Upper       null.Float `json:"upper"`
	Lower       null.Float `json:"lower"`
	RSI         null.Float `json:"rsi"`
}

// IndicatorSeries is the read-only output of the indicator engine
type IndicatorSeries struct {
	Ticker string         `json:"ticker"`
	Rows   []IndicatorRow `json:"rows"`
}

// Len returns the number of rows
func (s *IndicatorSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Column identifies a numeric column of an IndicatorSeries
type Column string

const (
	ColumnOpen        Column = "Open"
	ColumnHigh        Column = "High"
	ColumnLow         Column = "Low"
	ColumnClose       Column = "Close"
	ColumnVolume      Column = "Volume"
	ColumnDailyReturn Column = "Daily Return"
	ColumnSMA30       Column = "SMA_30"
	ColumnSMA100      Column = "SMA_100"
	ColumnEMA30       Column = "EMA_30"
	ColumnVolatility  Column = "Volatility"
	ColumnBBMA20      Column = "BB_MA20"
	ColumnBBSTD       Column = "BB_STD"
	ColumnUpper       Column = "Upper"
	ColumnLower       Column = "Lower"
	ColumnRSI         Column = "RSI"
)

// Columns lists every numeric column in export order
var Columns = []Column{
	ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume,
	ColumnDailyReturn, ColumnSMA30, ColumnSMA100, ColumnEMA30, ColumnVolatility,
	ColumnBBMA20, ColumnBBSTD, ColumnUpper, ColumnLower, ColumnRSI,
}

// Value returns the cell for the given column
func (r *IndicatorRow) Value(c Column) null.Float {
	if p := r.cell(c); p != nil {
		return *p
	}
	return null.Float{}
}

// SetValue sets the cell for the given column. Unknown columns are ignored.
func (r *IndicatorRow) SetValue(c Column, v null.Float) {
	if p := r.cell(c); p != nil {
		*p = v
	}
}

func (r *IndicatorRow) cell(c Column) *null.Float {
	switch c {
	case ColumnOpen:
		return &r.Open
	case ColumnHigh:
		return &r.High
	case ColumnLow:
		return &r.Low
	case ColumnClose:
		return &r.Close
	case ColumnVolume:
		return &r.Volume
	case ColumnDailyReturn:
		return &r.DailyReturn
	case ColumnSMA30:
		return &r.SMA30
	case ColumnSMA100:
		return &r.SMA100
	case ColumnEMA30:
		return &r.EMA30
	case ColumnVolatility:
		return &r.Volatility
	case ColumnBBMA20:
		return &r.BBMA20
	case ColumnBBSTD:
		return &r.BBSTD
	case ColumnUpper:
		return &r.Upper
	case ColumnLower:
		return &r.Lower
	case ColumnRSI:
		return &r.RSI
	}
	return nil
}
