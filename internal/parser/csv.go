package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser renders tabular data as labeled text lines for insight context.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Source, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	src := &Source{Name: filename, TotalPages: 1}
	if len(records) == 0 {
		return src, nil
	}

	// First row is headers.
	headers := records[0]

	var text strings.Builder
	text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
	for _, row := range records[1:] {
		for j, cell := range row {
			if j > 0 {
				text.WriteString(", ")
			}
			if j < len(headers) {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
		}
		text.WriteString("\n")
	}

	src.Text = strings.TrimRight(text.String(), "\n")
	return src, nil
}
