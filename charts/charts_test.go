package charts

import (
	"testing"
	"time"

	"equity-dashboard/models"

	"github.com/guregu/null/v6"
)

func rowsWithRSI(values ...null.Float) *models.IndicatorSeries {
	s := &models.IndicatorSeries{Ticker: "TCS.NS"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		var r models.IndicatorRow
		r.Date = base.AddDate(0, 0, i)
		r.Close = null.FloatFrom(float64(100 + i))
		r.RSI = v
		s.Rows = append(s.Rows, r)
	}
	return s
}

func TestNewLine_SplitsAtUndefined(t *testing.T) {
	s := rowsWithRSI(
		null.Float{}, null.FloatFrom(40), null.FloatFrom(45),
		null.Float{}, null.FloatFrom(60), null.Float{},
	)
	line := NewLine("RSI", models.ColumnRSI, s)

	if len(line.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(line.Segments))
	}
	if len(line.Segments[0]) != 2 || len(line.Segments[1]) != 1 {
		t.Errorf("unexpected segment lengths %d, %d", len(line.Segments[0]), len(line.Segments[1]))
	}
	if line.Len() != 3 {
		t.Errorf("Len = %d, want 3", line.Len())
	}
	if line.Segments[1][0].Value != 60 {
		t.Errorf("second segment value = %v", line.Segments[1][0].Value)
	}
}

func TestNewLine_AllUndefined(t *testing.T) {
	line := NewLine("RSI", models.ColumnRSI, rowsWithRSI(null.Float{}, null.Float{}))
	if line.Segments == nil || len(line.Segments) != 0 {
		t.Errorf("expected empty non-nil segments, got %v", line.Segments)
	}
}

func TestBuild(t *testing.T) {
	s := rowsWithRSI(null.FloatFrom(50))
	tests := []struct {
		name  string
		opts  models.DashboardOptions
		price bool
		lines int
		rsi   bool
		vol   bool
	}{
		{"defaults", models.DashboardOptions{ShowClose: true, ShowMovingAverages: true}, true, 3, false, false},
		{"close only", models.DashboardOptions{ShowClose: true}, true, 1, false, false},
		{"bands only", models.DashboardOptions{ShowBollingerBands: true}, true, 3, false, false},
		{"everything", models.DashboardOptions{ShowClose: true, ShowMovingAverages: true, ShowBollingerBands: true, ShowRSI: true, ShowVolatility: true}, true, 5, true, true},
		{"rsi only", models.DashboardOptions{ShowRSI: true}, false, 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Build("TCS", s, tt.opts)
			if (set.Price != nil) != tt.price {
				t.Fatalf("price chart present = %v, want %v", set.Price != nil, tt.price)
			}
			if set.Price != nil && len(set.Price.Lines) != tt.lines {
				t.Errorf("price lines = %d, want %d", len(set.Price.Lines), tt.lines)
			}
			if (set.RSI != nil) != tt.rsi {
				t.Errorf("rsi chart present = %v, want %v", set.RSI != nil, tt.rsi)
			}
			if (set.Volatility != nil) != tt.vol {
				t.Errorf("volatility chart present = %v, want %v", set.Volatility != nil, tt.vol)
			}
		})
	}
}

func TestRSIChart_Guides(t *testing.T) {
	c := RSIChart("TCS", rowsWithRSI(null.FloatFrom(50)))
	if len(c.Guides) != 2 || c.Guides[0].Value != RSIOverbought || c.Guides[1].Value != RSIOversold {
		t.Errorf("unexpected guides %+v", c.Guides)
	}
}
