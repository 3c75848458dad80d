package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0 // A4 landscape minus margins
	minColWidth = 18.0
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := columnWidths(pdf, data)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		if data.Title != "" {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 9, tr(data.Title), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	for _, row := range data.Rows {
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 7, tr(row[h]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Rows) == 0 {
		pdf.CellFormat(pageWidth, 7, "No records", "1", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths sizes columns by their widest cell and scales them to the page.
func columnWidths(pdf *gofpdf.Fpdf, data Dataset) []float64 {
	pdf.SetFont("Arial", "", 8)
	widths := make([]float64, len(data.Headers))
	total := 0.0
	for i, h := range data.Headers {
		w := pdf.GetStringWidth(h) + 4
		for _, row := range data.Rows {
			if cw := pdf.GetStringWidth(row[h]) + 4; cw > w {
				w = cw
			}
		}
		if w < minColWidth {
			w = minColWidth
		}
		widths[i] = w
		total += w
	}
	scale := pageWidth / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}
