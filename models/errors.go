package models

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSymbolNotFound is returned when a company name has no listed ticker
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrDataUnavailable is returned when the provider has no data for the range
	ErrDataUnavailable = errors.New("data unavailable")
)

// ErrorKind classifies a per-symbol failure for API responses and metrics
type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindSymbolNotFound  ErrorKind = "symbol_not_found"
	ErrorKindDataUnavailable ErrorKind = "data_unavailable"
	ErrorKindTimeout         ErrorKind = "timeout"
	ErrorKindUpstream        ErrorKind = "upstream"
)

// SymbolError attaches the company and ticker to a pipeline failure
type SymbolError struct {
	Company string
	Ticker  string
	Err     error
}

func (e *SymbolError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("%s (%s): %v", e.Company, e.Ticker, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Company, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// KindOf classifies an error
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrSymbolNotFound):
		return ErrorKindSymbolNotFound
	case errors.Is(err, ErrDataUnavailable):
		return ErrorKindDataUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorKindTimeout
	default:
		return ErrorKindUpstream
	}
}
