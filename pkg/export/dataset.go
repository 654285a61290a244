package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content. Rows are positional and follow Headers.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// Format names accepted by NewRenderer.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// NewRenderer resolves a renderer by format name.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return NewCSVExporter(), nil
	case FormatXLSX, "excel":
		return NewXLSXExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
