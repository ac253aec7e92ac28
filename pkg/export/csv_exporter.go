package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column describes one table column. Weight sizes PDF columns relative to each other.
type Column struct {
	Title  string
	Weight float64
}

// Dataset is an ordered table: every row holds one cell per column.
type Dataset struct {
	Columns []Column
	Rows    [][]string
}

// Titles returns the column titles in order.
func (d Dataset) Titles() []string {
	titles := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		titles[i] = c.Title
	}
	return titles
}

func (d Dataset) validate(format string) error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s requires at least one column", format)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("%s row %d has %d cells, want %d", format, i+1, len(row), len(d.Columns))
		}
	}
	return nil
}

// CSVExporter writes datasets as RFC 4180 CSV with a title row.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Extension returns the file extension of rendered documents.
func (e *CSVExporter) Extension() string { return "csv" }

// Render encodes the dataset. CSV has no caption, so the title is not written.
func (e *CSVExporter) Render(data Dataset, _ string) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Titles())
	records = append(records, data.Rows...)

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("write inventory csv: %w", err)
	}
	return buf.Bytes(), nil
}
