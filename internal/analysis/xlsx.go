package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook converts the first non-empty sheet of an Excel workbook into
// the same header-indexed Table the CSV path produces, so workbook uploads
// flow through the identical column-resolution pipeline. The sheet's first
// row is the header.
func ParseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var rows [][]string
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(sheetRows) > 0 {
			rows = sheetRows
			break
		}
	}

	if len(rows) < 2 {
		return nil, NewMalformedInput("workbook sheet must contain a header row and at least one data row")
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		if len(cells) < 2 {
			continue
		}
		dataRows = append(dataRows, cells)
	}

	return newTable(header, dataRows), nil
}
