package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun records one company's pass through the pipeline
type AnalysisRun struct {
	ID           uuid.UUID         `json:"id"`
	Company      string            `json:"company"`
	Ticker       string            `json:"ticker,omitempty"`
	RangeStart   time.Time         `json:"range_start"`
	RangeEnd     time.Time         `json:"range_end"`
	Status       AnalysisRunStatus `json:"status"`
	Rows         int               `json:"rows"`
	CacheHit     bool              `json:"cache_hit"`
	ErrorKind    ErrorKind         `json:"error_kind,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	DurationMs   int               `json:"duration_ms"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

type AnalysisRunStatus string

const (
	AnalysisRunStatusRunning   AnalysisRunStatus = "running"
	AnalysisRunStatusCompleted AnalysisRunStatus = "completed"
	AnalysisRunStatusFailed    AnalysisRunStatus = "failed"
)

func NewAnalysisRun(company string, start, end time.Time) *AnalysisRun {
	return &AnalysisRun{
		ID:         uuid.New(),
		Company:    company,
		RangeStart: start,
		RangeEnd:   end,
		Status:     AnalysisRunStatusRunning,
		StartedAt:  time.Now(),
	}
}

func (r *AnalysisRun) Complete(rows int) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = AnalysisRunStatusCompleted
	r.Rows = rows
	r.DurationMs = int(now.Sub(r.StartedAt).Milliseconds())
}

func (r *AnalysisRun) Fail(err error) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = AnalysisRunStatusFailed
	r.ErrorKind = KindOf(err)
	r.ErrorMessage = err.Error()
	r.DurationMs = int(now.Sub(r.StartedAt).Milliseconds())
}
