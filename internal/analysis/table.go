package analysis

import (
	"strings"
)

// Table is a header-indexed row set produced from raw delimited text or a
// workbook sheet. Headers are lowercased and trimmed; Index maps each header
// name to its column position (first occurrence wins on duplicates).
type Table struct {
	Headers []string
	Index   map[string]int
	Rows    [][]string
}

// ParseTable turns raw CSV text into a Table. The first line is the header;
// each subsequent line is split on comma, with cells trimmed and stripped of
// one layer of surrounding single or double quotes. Rows with fewer than 2
// cells are skipped silently.
//
// Quoted-comma escaping is intentionally not implemented: a comma inside a
// quoted field splits the field. Tests assert this limitation.
func ParseTable(raw string) (*Table, error) {
	lines := strings.Split(raw, "\n")

	// The malformed-input gate counts raw lines: only truly single-line
	// input is rejected here. A header followed by blank lines yields a
	// zero-row table, and the record parsers report that as an empty result.
	if len(lines) < 2 {
		return nil, NewMalformedInput("input must contain a header line and at least one data line")
	}

	// Drop trailing blank lines so a terminating newline does not count as
	// a data row.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, NewMalformedInput("input must contain a header line and at least one data line")
	}

	header := splitLine(lines[0])
	for i, cell := range header {
		header[i] = strings.ToLower(cell)
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := splitLine(line)
		if len(cells) < 2 {
			continue
		}
		rows = append(rows, cells)
	}

	return newTable(header, rows), nil
}

// newTable builds the header index over already-normalized cells.
func newTable(headers []string, rows [][]string) *Table {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	return &Table{Headers: headers, Index: index, Rows: rows}
}

// Cell returns the trimmed value at the given column of a row, or "" when
// the row is too short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// splitLine splits one line on commas and normalizes each cell: trim,
// strip a single layer of surrounding quotes, trim again.
func splitLine(line string) []string {
	line = strings.TrimRight(line, "\r")
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = stripQuotes(strings.TrimSpace(p))
	}
	return parts
}

// stripQuotes removes one layer of matching surrounding single or double
// quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
