package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders documents into a tabular PDF, one table per section.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and a table for every section.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(documentHeaders(doc)) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for _, section := range doc.Sections {
		headers := section.Data.Headers
		if len(headers) == 0 {
			continue
		}
		if section.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(section.Title), "", 1, "L", false, 0, "")
		}

		colWidth := usable / float64(len(headers))
		pdf.SetFont("Arial", "B", 9)
		for _, header := range headers {
			pdf.CellFormat(colWidth, 7, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Data.Rows {
			for _, header := range headers {
				pdf.CellFormat(colWidth, 6, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
