// Package export renders tabular datasets as CSV or PDF.
package export

import "fmt"

// Format enumerates supported output formats.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a query value, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// SummaryLine is a label/value pair rendered under the table (PDF only).
type SummaryLine struct {
	Label string
	Value string
}

// Dataset defines tabular export content.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     []map[string]string
	Summary  []SummaryLine
}

// Renderer produces bytes for a dataset.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Render dispatches to the exporter for format.
func Render(format Format, data Dataset) ([]byte, error) {
	switch format {
	case FormatPDF:
		return NewPDFExporter().Render(data)
	default:
		return NewCSVExporter().Render(data)
	}
}
