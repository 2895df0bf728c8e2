package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"sessionpulse/pkg/contracts/domain"
)

// fusedHeaders is the canonical export layout. The column names resolve
// back to the session-id, duration, and success-rate fields on re-import.
var fusedHeaders = []string{"Session ID", "Session Number", "Session Length", "Success Rate"}

// FusedExporter writes fused session records as CSV.
type FusedExporter struct {
	writer *CSVWriter
}

// NewFusedExporter creates an exporter backed by the given CSV writer.
func NewFusedExporter(writer *CSVWriter) *FusedExporter {
	return &FusedExporter{writer: writer}
}

// Headers returns a copy of the export column headers.
func Headers() []string {
	headers := make([]string, len(fusedHeaders))
	copy(headers, fusedHeaders)
	return headers
}

// Rows converts fused records to CSV rows, preserving input order.
func Rows(records []domain.FusedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.SessionID,
			formatInt(rec.SequenceIndex),
			formatFloat(rec.DurationSeconds),
			formatFloat(rec.SuccessRate),
		})
	}
	return rows
}

// Write streams the export directly to w, headers first. Used by the
// HTTP download endpoint so large results never touch disk.
func (e *FusedExporter) Write(w io.Writer, records []domain.FusedRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(fusedHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range Rows(records) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFile writes the fused records to a CSV file under the writer's
// base directory.
func (e *FusedExporter) ExportFile(filePath string, records []domain.FusedRecord) error {
	return e.writer.WriteSimpleCSV(filePath, fusedHeaders, Rows(records))
}
