package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"equity-dashboard/charts"
	"equity-dashboard/dashboard"
	"equity-dashboard/models"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

func testResult() *dashboard.Result {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := &models.IndicatorSeries{Ticker: "TCS.NS"}
	for i := 0; i < 12; i++ {
		var row models.IndicatorRow
		row.Date = day.AddDate(0, 0, i)
		row.Close = null.FloatFrom(100 + float64(i))
		series.Rows = append(series.Rows, row)
	}
	opts := models.DashboardOptions{
		Companies: []string{"TATA CONSULTANCY SERVICES LTD.", "<bad> & co"},
		Start:     day,
		End:       day.AddDate(0, 1, 0),
		ShowClose: true,
	}
	return &dashboard.Result{
		Options: opts,
		Reports: []dashboard.Report{
			{
				Company: "TATA CONSULTANCY SERVICES LTD.",
				Ticker:  "TCS.NS",
				Status:  dashboard.StatusOK,
				Summary: &models.Summary{LastClose: decimal.NewFromFloat(111)},
				Charts:  charts.Build("TATA CONSULTANCY SERVICES LTD.", series, opts),
				Series:  series,
			},
			{
				Company:   "<bad> & co",
				Status:    dashboard.StatusError,
				ErrorKind: models.ErrorKindSymbolNotFound,
				Error:     `symbol not found: "<bad> & co"`,
			},
		},
	}
}

func TestIndex(t *testing.T) {
	res := testResult()
	var buf bytes.Buffer
	err := Index(Page{
		Options:   res.Options,
		Companies: []string{"INFOSYS LIMITED", "TATA CONSULTANCY SERVICES LTD."},
		Result:    res,
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	body := buf.String()

	for _, want := range []string{
		Title,
		`<option value="INFOSYS LIMITED">`,
		`value="2024-01-02"`,
		`name="show_close" value="true" checked`,
		"TCS.NS",
		"111.00",
		"Last 10 Days of Data",
		`TATA CONSULTANCY SERVICES LTD. - Price \u0026 Indicators`,
		`href="/api/export?company=TATA+CONSULTANCY+SERVICES+LTD.&amp;end=2024-02-02&amp;start=2024-01-02"`,
		`<div class="chart" data-chart="`,
		`<label>Start date <input type="date" name="start"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}

	if strings.Contains(body, "<bad>") {
		t.Error("company names must be escaped")
	}
	if !strings.Contains(body, "&lt;bad&gt; &amp; co") {
		t.Error("expected escaped company name")
	}
	if strings.Contains(body, `name="show_rsi" value="true" checked`) {
		t.Error("RSI checkbox should be unchecked")
	}
	// 10 preview rows plus the header row
	if n := strings.Count(body, "<tr>"); n != 11 {
		t.Errorf("expected 11 table rows, got %d", n)
	}
}

func TestReports_Partial(t *testing.T) {
	var buf bytes.Buffer
	if err := Reports(testResult()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	body := buf.String()
	if strings.Contains(body, "<html") {
		t.Error("partial must not contain the page shell")
	}
	if strings.Count(body, `<article class="report">`) != 2 {
		t.Error("expected one article per report")
	}
	if !strings.Contains(body, `role="alert"`) {
		t.Error("expected error block for failed report")
	}
}

func TestErrorState(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorState("a < b").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "a &lt; b") {
		t.Errorf("expected escaped message, got %s", buf.String())
	}
}

func TestErrorState_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := ErrorState("boom").Render(ctx, &buf); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestExportURL(t *testing.T) {
	opts := models.DashboardOptions{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	got := exportURL("A & B", opts)
	want := "/api/export?company=A+%26+B&end=&start=2024-01-02"
	if got != want {
		t.Errorf("exportURL = %q, want %q", got, want)
	}
}
