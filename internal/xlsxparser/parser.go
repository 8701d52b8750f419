// =============================================================================
// Sales Report - XLSX Worksheet Reader
// =============================================================================
//
// This module reads one worksheet of an input workbook for the merge
// pipeline. The first row is the header; every following non-empty row is
// data. Cell values keep their spreadsheet type:
//
//   | Cell type in the file            | Go value  |
//   |----------------------------------|-----------|
//   | number (or untyped numeric)      | float64   |
//   | boolean                          | bool      |
//   | shared / inline string, date str | string    |
//   | empty                            | nil       |
//
// The number format of each column is taken from the first data row so the
// merged sheet can show dates and amounts the way the inputs did.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/internal/validation"
)

// ErrNoHeader is returned when the worksheet has no rows at all.
var ErrNoHeader = errors.New("worksheet has no header row")

// ReadSheet reads a worksheet from a workbook.
//
// PARAMETERS:
//   - path: The workbook path.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The header, typed rows and column formats of the worksheet.
//   - *validation.SheetNotFoundError if the sheet does not exist,
//     ErrNoHeader if it is empty, or an error if the file cannot be read.
func ReadSheet(path, sheet string) (*types.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	if sheet == "" {
		sheet = sheetNames[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, &validation.SheetNotFoundError{
			File:      path,
			Sheet:     sheet,
			Available: sheetNames,
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer rows.Close()

	out := &types.Sheet{
		SourceFile: path,
		Name:       sheet,
	}

	rowIndex := 0
	for rows.Next() {
		rowIndex++

		columns, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowIndex, err)
		}

		if out.Header == nil {
			if isRowEmpty(columns) {
				continue
			}
			out.Header = cleanHeader(columns)
			continue
		}

		if isRowEmpty(columns) {
			continue
		}

		if len(columns) > len(out.Header) {
			return nil, &validation.DataValidationError{
				File:   path,
				Row:    rowIndex,
				Reason: fmt.Sprintf("row has %d cells but the header has %d columns", len(columns), len(out.Header)),
			}
		}

		cellTypes, err := rowCellTypes(f, sheet, rowIndex, len(columns))
		if err != nil {
			return nil, err
		}

		values := make([]interface{}, len(out.Header))
		for col, raw := range columns {
			values[col] = cellValue(raw, cellTypes[col])
		}

		if out.Formats == nil {
			out.Formats = columnFormats(f, sheet, rowIndex, len(out.Header))
		}
		out.Rows = append(out.Rows, values)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	if out.Header == nil {
		return nil, ErrNoHeader
	}
	if out.Formats == nil {
		out.Formats = make([]types.CellFormat, len(out.Header))
	}

	return out, nil
}

// rowCellTypes returns the stored type of the first width cells of a row.
//
// Rows() yields strings only, so types come from GetCellType. The first call
// loads the whole worksheet into memory. Each call then binary-searches the
// row and scans its cells, so a row of n cells costs O(n²) comparisons; fine
// for the narrow tables merged here, slow for sheets thousands of columns wide.
func rowCellTypes(f *excelize.File, sheet string, row, width int) ([]excelize.CellType, error) {
	cellTypes := make([]excelize.CellType, width)
	for col := range cellTypes {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return nil, err
		}
		if cellTypes[col], err = f.GetCellType(sheet, cell); err != nil {
			return nil, fmt.Errorf("failed to read cell %s: %w", cell, err)
		}
	}
	return cellTypes, nil
}

// cellValue converts a raw cell string into its typed value.
func cellValue(raw string, cellType excelize.CellType) interface{} {
	if raw == "" {
		return nil
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// Numbers written without a t attribute come back as Unset.
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}

	return raw
}

// columnFormats reads the number format of every column on the given row.
func columnFormats(f *excelize.File, sheet string, row, width int) []types.CellFormat {
	formats := make([]types.CellFormat, width)

	for col := 1; col <= width; col++ {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		styleID, err := f.GetCellStyle(sheet, cell)
		if err != nil || styleID == 0 {
			continue
		}
		style, err := f.GetStyle(styleID)
		if err != nil || style == nil {
			continue
		}

		formats[col-1].NumFmt = style.NumFmt
		if style.CustomNumFmt != nil {
			formats[col-1].CustomNumFmt = *style.CustomNumFmt
		}
	}

	return formats
}

// cleanHeader trims header names. Case is preserved; merged headers must match exactly.
func cleanHeader(row []string) []string {
	header := make([]string, len(row))
	for i, h := range row {
		header[i] = strings.TrimSpace(h)
	}
	return header
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
