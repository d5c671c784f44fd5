package dashboard

import (
	"equity-dashboard/charts"
	"equity-dashboard/models"
)

// ReportStatus is the outcome of one company's analysis
type ReportStatus string

const (
	StatusOK    ReportStatus = "ok"
	StatusError ReportStatus = "error"
)

// Report is what the presentation layer renders for one company
type Report struct {
	Company   string                  `json:"company"`
	Ticker    string                  `json:"ticker,omitempty"`
	Status    ReportStatus            `json:"status"`
	ErrorKind models.ErrorKind        `json:"error_kind,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Summary   *models.Summary         `json:"summary,omitempty"`
	Charts    charts.Set              `json:"charts"`
	Series    *models.IndicatorSeries `json:"series,omitempty"`
	CacheHit  bool                    `json:"cache_hit"`
}

// OK reports whether the analysis succeeded
func (r *Report) OK() bool {
	return r.Status == StatusOK
}

// Result holds one report per requested company, in request order
type Result struct {
	Options models.DashboardOptions `json:"options"`
	Reports []Report                `json:"reports"`
}

// Failed counts reports that carry an error
func (r *Result) Failed() int {
	n := 0
	for i := range r.Reports {
		if !r.Reports[i].OK() {
			n++
		}
	}
	return n
}
