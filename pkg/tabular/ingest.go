package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when the declared format is not a
// recognized tabular format
var ErrUnsupportedFormat = errors.New("unsupported file format, use csv or xlsx")

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// date layouts accepted for datetime column inference
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a date literal using the same layouts as ingestion
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date literal %q", s)
}

// IngestOptions tunes ingestion. DeclaredNumeric lists raw column names
// that must be coerced to numeric even if some cells do not parse;
// unparseable cells become 0 rather than failing the load.
type IngestOptions struct {
	DeclaredNumeric []string
}

// Ingest parses a byte stream in the declared format and returns a
// normalized Dataset. Fails with ErrUnsupportedFormat for anything other
// than csv/xlsx.
func Ingest(name string, r io.Reader, format string, opts IngestOptions) (*Dataset, error) {
	var records [][]string
	var err error

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	ds, err := fromRecords(name, records, opts)
	if err != nil {
		return nil, err
	}
	return ds.Normalize(), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %v", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	// First sheet only, matching the upload contract
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %v", sheets[0], err)
	}

	// GetRows trims trailing empty cells per row, pad to header width
	if len(rows) > 0 {
		width := len(rows[0])
		for i, row := range rows {
			for len(row) < width {
				row = append(row, "")
			}
			rows[i] = row
		}
	}
	return rows, nil
}

// fromRecords builds typed columns from a raw string grid. Column kinds are
// inferred cell-by-cell; a column where every non-empty cell parses as a
// number becomes numeric, then dates are tried, everything else is text.
func fromRecords(name string, records [][]string, opts IngestOptions) (*Dataset, error) {
	header := records[0]
	body := records[1:]

	declared := make(map[string]bool, len(opts.DeclaredNumeric))
	for _, raw := range opts.DeclaredNumeric {
		declared[NormalizeColumnName(raw)] = true
	}

	columns := make([]*Column, 0, len(header))
	for idx, rawName := range header {
		cells := make([]string, 0, len(body))
		for _, row := range body {
			if idx < len(row) {
				cells = append(cells, row[idx])
			} else {
				cells = append(cells, "")
			}
		}
		columns = append(columns, buildColumn(rawName, cells, declared[NormalizeColumnName(rawName)]))
	}

	return NewDataset(name, columns)
}

func buildColumn(name string, cells []string, declaredNumeric bool) *Column {
	if declaredNumeric || allNumeric(cells) {
		nums := make([]float64, len(cells))
		for i, cell := range cells {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = 0 // best-effort coercion, unparseable cells default to zero
			}
			nums[i] = v
		}
		return &Column{Name: name, Kind: KindNumeric, Nums: nums}
	}

	if times, ok := allDatetime(cells); ok {
		return &Column{Name: name, Kind: KindDatetime, Times: times}
	}

	return &Column{Name: name, Kind: KindText, Texts: cells}
}

func allNumeric(cells []string) bool {
	nonEmpty := 0
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return nonEmpty > 0
}

func allDatetime(cells []string) ([]time.Time, bool) {
	times := make([]time.Time, len(cells))
	nonEmpty := 0
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonEmpty++
		parsed := false
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, cell); err == nil {
				times[i] = t
				parsed = true
				break
			}
		}
		if !parsed {
			return nil, false
		}
	}
	return times, nonEmpty > 0
}
