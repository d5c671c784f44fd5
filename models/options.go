package models

import (
	"errors"
	"fmt"
	"time"
)

// DashboardOptions selects what the presentation layer renders. The toggles never
// change how indicators are computed.
type DashboardOptions struct {
	Companies          []string  `json:"companies" yaml:"companies"`
	Start              time.Time `json:"start" yaml:"-"`
	End                time.Time `json:"end" yaml:"-"`
	ShowClose          bool      `json:"show_close" yaml:"show_close"`
	ShowMovingAverages bool      `json:"show_moving_averages" yaml:"show_moving_averages"`
	ShowBollingerBands bool      `json:"show_bollinger_bands" yaml:"show_bollinger_bands"`
	ShowRSI            bool      `json:"show_rsi" yaml:"show_rsi"`
	ShowVolatility     bool      `json:"show_volatility" yaml:"show_volatility"`
}

// ErrInvalidRange is returned when the requested date range is empty or inverted
var ErrInvalidRange = errors.New("invalid date range")

// Validate checks the date range and company selection
func (o *DashboardOptions) Validate() error {
	if len(o.Companies) == 0 {
		return errors.New("at least one company is required")
	}
	if o.Start.IsZero() || o.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidRange)
	}
	if !o.End.After(o.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidRange,
			o.End.Format(DateLayout), o.Start.Format(DateLayout))
	}
	return nil
}

// ShowPriceChart reports whether the price chart is drawn at all
func (o *DashboardOptions) ShowPriceChart() bool {
	return o.ShowClose || o.ShowMovingAverages || o.ShowBollingerBands
}
