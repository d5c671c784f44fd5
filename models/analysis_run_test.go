package models

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewAnalysisRun(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	run := NewAnalysisRun("INFOSYS LTD.", start, end)

	if run.Company != "INFOSYS LTD." {
		t.Errorf("Company = %v, want 'INFOSYS LTD.'", run.Company)
	}
	if run.Status != AnalysisRunStatusRunning {
		t.Errorf("Status = %v, want AnalysisRunStatusRunning", run.Status)
	}
	if run.ID == [16]byte{} {
		t.Error("ID should not be zero UUID")
	}
	if !run.RangeStart.Equal(start) || !run.RangeEnd.Equal(end) {
		t.Errorf("range = %v..%v, want %v..%v", run.RangeStart, run.RangeEnd, start, end)
	}
	if run.CompletedAt != nil {
		t.Error("CompletedAt should be nil for new run")
	}
}

func TestAnalysisRun_Complete(t *testing.T) {
	run := NewAnalysisRun("INFOSYS LTD.", time.Now().AddDate(-1, 0, 0), time.Now())
	time.Sleep(5 * time.Millisecond)

	run.Complete(250)

	if run.Status != AnalysisRunStatusCompleted {
		t.Errorf("Status = %v, want AnalysisRunStatusCompleted", run.Status)
	}
	if run.Rows != 250 {
		t.Errorf("Rows = %d, want 250", run.Rows)
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt should not be nil after completion")
	}
	if run.DurationMs <= 0 {
		t.Errorf("DurationMs = %v, should be > 0", run.DurationMs)
	}
}

func TestAnalysisRun_Fail(t *testing.T) {
	run := NewAnalysisRun("UNKNOWN CO", time.Now().AddDate(-1, 0, 0), time.Now())

	run.Fail(fmt.Errorf("resolve: %w", ErrSymbolNotFound))

	if run.Status != AnalysisRunStatusFailed {
		t.Errorf("Status = %v, want AnalysisRunStatusFailed", run.Status)
	}
	if run.ErrorKind != ErrorKindSymbolNotFound {
		t.Errorf("ErrorKind = %v, want %v", run.ErrorKind, ErrorKindSymbolNotFound)
	}
	if run.ErrorMessage == "" {
		t.Error("ErrorMessage should be set")
	}
	if !errors.Is(fmt.Errorf("x: %w", ErrSymbolNotFound), ErrSymbolNotFound) {
		t.Error("sanity: wrapped sentinel should match")
	}
}
