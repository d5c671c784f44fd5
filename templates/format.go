package templates

import (
	"net/url"
	"time"

	"equity-dashboard/models"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}

// exportURL links to the CSV download for one company over the page's range
func exportURL(company string, opts models.DashboardOptions) string {
	q := url.Values{}
	q.Set("company", company)
	q.Set("start", formatDate(opts.Start))
	q.Set("end", formatDate(opts.End))
	return "/api/export?" + q.Encode()
}
