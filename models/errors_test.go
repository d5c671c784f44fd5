package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorKindNone},
		{"symbol not found", ErrSymbolNotFound, ErrorKindSymbolNotFound},
		{"wrapped data unavailable", fmt.Errorf("fetch: %w", ErrDataUnavailable), ErrorKindDataUnavailable},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), ErrorKindTimeout},
		{"other", errors.New("status 502"), ErrorKindUpstream},
		{
			"symbol error",
			&SymbolError{Company: "ACME", Err: ErrSymbolNotFound},
			ErrorKindSymbolNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSymbolError_Error(t *testing.T) {
	err := &SymbolError{Company: "TATA STEEL LTD.", Ticker: "TATASTEEL.NS", Err: ErrDataUnavailable}
	want := "TATA STEEL LTD. (TATASTEEL.NS): data unavailable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noTicker := &SymbolError{Company: "ACME", Err: ErrSymbolNotFound}
	if noTicker.Error() != "ACME: symbol not found" {
		t.Errorf("Error() = %q", noTicker.Error())
	}
}
