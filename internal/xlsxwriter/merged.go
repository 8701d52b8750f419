package xlsxwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/pkg/utils"
)

// SheetMerged is the name of the single sheet of a merged workbook.
const SheetMerged = "Merged"

// WriteMerged writes the sheet as the "Merged" sheet of a new workbook and
// saves it atomically at path. The header is bold; every column keeps the
// number format recorded in sheet.Formats.
func WriteMerged(path string, sheet *types.Sheet) error {
	f, err := BuildMerged(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

// BuildMerged renders the merged workbook in memory.
func BuildMerged(sheet *types.Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetMerged); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeMergedRows(f, sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s sheet: %w", SheetMerged, err)
	}

	return f, nil
}

func writeMergedRows(f *excelize.File, sheet *types.Sheet) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	formats := make([]types.CellFormat, len(sheet.Header))
	copy(formats, sheet.Formats)
	styleIDs, err := formatStyles(f, formats)
	if err != nil {
		return err
	}

	widths := widthTracker{}
	for i, name := range sheet.Header {
		widths.observe(i+1, name)
	}
	for _, row := range sheet.Rows {
		for i, value := range row {
			widths.observe(i+1, renderValue(value))
		}
	}

	sw, err := f.NewStreamWriter(SheetMerged)
	if err != nil {
		return err
	}

	for col := 1; col <= len(sheet.Header); col++ {
		if err := sw.SetColWidth(col, col, widths.width(col)); err != nil {
			return err
		}
	}

	headerCells := make([]interface{}, len(sheet.Header))
	for i, name := range sheet.Header {
		headerCells[i] = excelize.Cell{Value: name, StyleID: bold}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return err
	}

	for r, row := range sheet.Rows {
		cells := make([]interface{}, len(sheet.Header))
		for i := range cells {
			var value interface{}
			if i < len(row) {
				value = row[i]
			}
			cells[i] = excelize.Cell{Value: value, StyleID: styleIDs[i]}
		}

		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// renderValue approximates how a cell value is displayed, for column widths.
func renderValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
