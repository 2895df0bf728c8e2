// Package exporter provides CSV export functionality for analysis results.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// FusedExporter: Converts fused session records into the canonical export
// layout (Session ID, Session Number, Session Length, Success Rate) and writes
// them to files or directly to an HTTP response body. Exported files round-trip
// through the dataset parsers.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter("/path/to/data")
//	fused := exporter.NewFusedExporter(writer)
//
//	// Export to a file under the data directory
//	err := fused.ExportFile("reports/analysis.csv", records)
//
//	// Or stream straight to an io.Writer
//	err = fused.Write(w, records)
package exporter
