// Package export writes and reads the downloadable indicator CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"equity-dashboard/models"

	"github.com/guregu/null/v6"
)

// HeaderDate is the first column of every export
const HeaderDate = "Date"

// DefaultPreviewRows is the number of trailing rows shown in the table preview
const DefaultPreviewRows = 10

// Header returns the CSV header row
func Header() []string {
	h := make([]string, 0, len(models.Columns)+1)
	h = append(h, HeaderDate)
	for _, c := range models.Columns {
		h = append(h, string(c))
	}
	return h
}

// WriteCSV writes one row per trading day. Undefined cells are written empty.
func WriteCSV(w io.Writer, s *models.IndicatorSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range s.Rows {
		if err := cw.Write(Record(&s.Rows[i])); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Record formats one row in Header order
func Record(row *models.IndicatorRow) []string {
	record := make([]string, len(models.Columns)+1)
	record[0] = row.Date.Format(models.DateLayout)
	for j, c := range models.Columns {
		record[j+1] = FormatCell(row.Value(c))
	}
	return record
}

// ReadCSV parses a file produced by WriteCSV. Columns are matched by header
// name, so extra or reordered columns are tolerated; a missing Date column is not.
func ReadCSV(r io.Reader) (*models.IndicatorSeries, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateIdx := -1
	cols := make(map[int]models.Column, len(header))
	known := make(map[string]models.Column, len(models.Columns))
	for _, c := range models.Columns {
		known[string(c)] = c
	}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == HeaderDate {
			dateIdx = i
			continue
		}
		if c, ok := known[name]; ok {
			cols[i] = c
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("missing %s column", HeaderDate)
	}

	out := &models.IndicatorSeries{Rows: []models.IndicatorRow{}}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var row models.IndicatorRow
		row.Date, err = time.Parse(models.DateLayout, rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, rec[dateIdx], err)
		}
		for i, c := range cols {
			v, err := ParseCell(rec[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, c, err)
			}
			row.SetValue(c, v)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// FormatCell renders a cell with the shortest representation that parses back
// to the same float64
func FormatCell(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

// ParseCell is the inverse of FormatCell
func ParseCell(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return null.Float{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(f), nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

// FileName returns the download name for a company's export
func FileName(company string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(company, "_"))
	if name == "" {
		name = "stock"
	}
	return name + "_cleaned_stock_data.csv"
}

// Tail returns the last n rows of s, or all of them when n exceeds the length
func Tail(s *models.IndicatorSeries, n int) []models.IndicatorRow {
	if s == nil || n <= 0 {
		return nil
	}
	if n >= len(s.Rows) {
		return s.Rows
	}
	return s.Rows[len(s.Rows)-n:]
}
