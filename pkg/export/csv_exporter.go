package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled dataset, e.g. one calendar week.
type Section struct {
	Title string
	Data  Dataset
}

// Document groups sections under a single title.
type Document struct {
	Title    string
	Sections []Section
}

// CSVExporter renders documents into a single CSV table. Section titles become the first column.
type CSVExporter struct {
	SectionHeader string
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter(sectionHeader string) *CSVExporter {
	return &CSVExporter{SectionHeader: sectionHeader}
}

// Render produces CSV encoded bytes for the document. All sections must share headers.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	headers := documentHeaders(doc)
	if len(headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	row := headers
	if e.SectionHeader != "" {
		row = append([]string{e.SectionHeader}, headers...)
	}
	if err := writer.Write(row); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, section := range doc.Sections {
		for _, values := range section.Data.Rows {
			record := make([]string, 0, len(headers)+1)
			if e.SectionHeader != "" {
				record = append(record, section.Title)
			}
			for _, header := range headers {
				record = append(record, values[header])
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func documentHeaders(doc Document) []string {
	for _, section := range doc.Sections {
		if len(section.Data.Headers) > 0 {
			return section.Data.Headers
		}
	}
	return nil
}
