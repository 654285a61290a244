package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is an uploaded sheet keyed by lower-cased, trimmed header names.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// MissingColumns reports the required headers missing from the table.
func (t Table) MissingColumns(required ...string) []string {
	present := make(map[string]struct{}, len(t.Headers))
	for _, h := range t.Headers {
		present[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := present[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// ErrEmptyTable is returned when an upload has no header row.
var ErrEmptyTable = errors.New("file has no header row")

// ReadCSV parses a CSV upload.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return buildTable(records)
}

// ReadXLSX parses the first sheet of an XLSX upload.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyTable
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read xlsx rows: %w", err)
	}
	return buildTable(records)
}

func buildTable(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptyTable
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	table := Table{Headers: headers}
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			row[h] = strings.TrimSpace(cell(record, i))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
