package mocks

import "time"

// Bar is one daily OHLCV row served by the mock providers.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
	// Missing blanks every price field of the row, as Yahoo does on
	// suspended sessions.
	Missing bool
}

// ListingEntry is one row of the listing CSV.
type ListingEntry struct {
	Symbol      string
	CompanyName string
}

// yahooChart mirrors the v8 chart payload.
type yahooChart struct {
	Chart yahooChartBody `json:"chart"`
}

type yahooChartBody struct {
	Result []yahooResult `json:"result"`
	Error  *yahooError   `json:"error"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooResult struct {
	Meta       yahooMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators yahooIndicators `json:"indicators"`
}

type yahooMeta struct {
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	GMTOffset int64  `json:"gmtoffset"`
}

type yahooIndicators struct {
	Quote    []yahooQuote    `json:"quote"`
	AdjClose []yahooAdjClose `json:"adjclose"`
}

type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yahooAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// AlpacaBar represents OHLCV bar data from Alpaca.
type AlpacaBar struct {
	Timestamp string  `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    int64   `json:"v"`
}
