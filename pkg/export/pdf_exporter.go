package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth = 277.0 // A4 landscape minus margins
	pdfMinCol    = 12.0
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) ContentType() string { return "application/pdf" }

func (e *PDFExporter) Extension() string { return FormatPDF }

// Render creates a PDF document with an optional title and a table whose header repeats per page.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)

	widths := columnWidths(data)
	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 7)
	}

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 9, data.Title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i := range data.Headers {
			pdf.CellFormat(widths[i], 6, fit(pdf, cell(row, i), widths[i]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths shares the page width in proportion to the longest value per column.
func columnWidths(data Dataset) []float64 {
	weights := make([]float64, len(data.Headers))
	total := 0.0
	for i, h := range data.Headers {
		longest := len(h)
		for _, row := range data.Rows {
			if l := len(cell(row, i)); l > longest {
				longest = l
			}
		}
		if longest > 30 {
			longest = 30
		}
		weights[i] = float64(longest)
		total += weights[i]
	}

	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = pdfPageWidth * w / total
		if widths[i] < pdfMinCol {
			widths[i] = pdfMinCol
		}
	}
	return widths
}

func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width-2 {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-2 {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimSpace(string(runes)) + "..."
}
