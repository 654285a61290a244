package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	SheetName string
}

// NewXLSXExporter constructs an XLSX exporter writing to a "Visitors" sheet.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{SheetName: "Visitors"}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) Extension() string { return FormatXLSX }

// Render writes a bold header row followed by the data rows as text cells.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := e.SheetName
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headerRow := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(data.Headers))
	if err != nil {
		return nil, fmt.Errorf("resolve last column: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style xlsx headers: %w", err)
	}

	values := make([]interface{}, len(data.Headers))
	for r, row := range data.Rows {
		for i := range data.Headers {
			values[i] = cell(row, i)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, axis, &values); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", r+1, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return nil, fmt.Errorf("size xlsx columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
