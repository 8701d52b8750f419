// =============================================================================
// Sales Report - Report Workbook Writer
// =============================================================================
//
// This module renders the sales report workbook:
//
//   Transactions sheet
//     | date | region | product | units | unit_price | revenue | (source_file) |
//     One row per transaction, bold header, dates as yyyy-mm-dd,
//     units as #,##0, prices and revenue as currency.
//
//   Summary sheet
//     A1:B7   KPI block (Label / Value)
//     A9:D…   region x product pivot + bold Total row
//     G9:H…   revenue by region (chart data, descending)
//     J9:K…   revenue by product (descending)
//     A(n+3)… monthly trend, three rows below the Total row
//     M9      bar chart "Revenue by Region"
//
// The workbook is built in memory and saved atomically.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/pkg/utils"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Sheet names and Summary layout.
const (
	SheetTransactions = "Transactions"
	SheetSummary      = "Summary"
	ChartTitle        = "Revenue by Region"

	// KPIHeaderRow holds "Label" / "Value"; KPIs follow on rows 2-7.
	KPIHeaderRow = 1

	// PivotHeaderRow is the header row of the pivot, region and product tables.
	PivotHeaderRow = 9

	RegionColumn  = 7  // G
	ProductColumn = 10 // J
	ChartAnchor   = "M9"

	// monthGap is the number of rows between the Total row and the monthly table.
	monthGap = 3
)

// PivotHeader is the exact header of the pivot table.
var PivotHeader = []string{"region", "product", "units_sum", "revenue_sum"}

// ReportOptions tunes the report workbook.
type ReportOptions struct {
	// IncludeSource adds a source_file column to the Transactions sheet.
	IncludeSource bool
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// WriteReport builds the report workbook and saves it atomically at path,
// replacing any existing file.
//
// RETURNS:
//   - *validation.WritePermissionError if the file cannot be written.
//   - An error if the workbook cannot be built.
func WriteReport(path string, rows []types.Row, summary types.Summary, opts ReportOptions) error {
	f, err := BuildReport(rows, summary, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

// BuildReport renders the workbook in memory.
func BuildReport(rows []types.Row, summary types.Summary, opts ReportOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetTransactions); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeTransactions(f, styles, rows, opts); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s sheet: %w", SheetTransactions, err)
	}
	if err := writeSummary(f, styles, summary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s sheet: %w", SheetSummary, err)
	}

	return f, nil
}

// =============================================================================
// TRANSACTIONS SHEET
// =============================================================================

// TransactionsHeader returns the Transactions sheet header.
func TransactionsHeader(includeSource bool) []string {
	header := append([]string(nil), types.SalesHeader...)
	header = append(header, types.ColRevenue)
	if includeSource {
		header = append(header, types.ColSource)
	}
	return header
}

func writeTransactions(f *excelize.File, styles *styleSet, rows []types.Row, opts ReportOptions) error {
	header := TransactionsHeader(opts.IncludeSource)

	widths := widthTracker{}
	for i, name := range header {
		widths.observe(i+1, name)
	}
	// The date column is fixed at 14 wide (room for yyyy-mm-dd).
	widths.observe(1, "yyyy-mm-dd  ")
	for _, row := range rows {
		widths.observe(2, row.Region)
		widths.observe(3, row.Product)
		widths.observe(4, utils.FormatCount(row.Units))
		widths.observe(5, utils.FormatMoney(row.UnitPrice))
		widths.observe(6, utils.FormatMoney(row.Revenue))
		if opts.IncludeSource {
			widths.observe(7, filepath.Base(row.SourceFile))
		}
	}

	sw, err := f.NewStreamWriter(SheetTransactions)
	if err != nil {
		return err
	}

	for col := 1; col <= len(header); col++ {
		if err := sw.SetColWidth(col, col, widths.width(col)); err != nil {
			return err
		}
	}

	headerCells := make([]interface{}, len(header))
	for i, name := range header {
		headerCells[i] = excelize.Cell{Value: name, StyleID: styles.bold}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return err
	}

	for i, row := range rows {
		cells := []interface{}{
			excelize.Cell{Value: row.Date, StyleID: styles.date},
			excelize.Cell{Value: row.Region},
			excelize.Cell{Value: row.Product},
			excelize.Cell{Value: row.Units, StyleID: styles.integer},
			excelize.Cell{Value: row.UnitPrice.InexactFloat64(), StyleID: styles.currency},
			excelize.Cell{Value: row.Revenue.InexactFloat64(), StyleID: styles.currency},
		}
		if opts.IncludeSource {
			cells = append(cells, excelize.Cell{Value: filepath.Base(row.SourceFile)})
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// =============================================================================
// SUMMARY SHEET
// =============================================================================

// cellWriter writes cells on one sheet and keeps the first error.
type cellWriter struct {
	f      *excelize.File
	sheet  string
	widths widthTracker
	err    error
}

func (w *cellWriter) set(col, row int, value interface{}, style int, text string) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
			w.err = err
			return
		}
	}
	w.widths.observe(col, text)
}

func (w *cellWriter) text(col, row int, value string, style int) {
	w.set(col, row, value, style, value)
}

func (w *cellWriter) integer(col, row int, value int64, style int) {
	w.set(col, row, value, style, utils.FormatCount(value))
}

func (w *cellWriter) money(col, row int, value decimal.Decimal, style int) {
	w.set(col, row, value.InexactFloat64(), style, utils.FormatMoney(value))
}

func (w *cellWriter) headers(col, row int, names []string, style int) {
	for i, name := range names {
		w.text(col+i, row, name, style)
	}
}

func writeSummary(f *excelize.File, styles *styleSet, summary types.Summary) error {
	w := &cellWriter{f: f, sheet: SheetSummary, widths: widthTracker{}}
	kpis := summary.KPIs

	// KPI block.
	w.headers(1, KPIHeaderRow, []string{"Label", "Value"}, styles.label)
	row := KPIHeaderRow + 1
	w.text(1, row, "Total Revenue", 0)
	w.money(2, row, kpis.TotalRevenue, styles.currency)
	row++
	w.text(1, row, "Total Units", 0)
	w.integer(2, row, kpis.TotalUnits, styles.integer)
	row++
	w.text(1, row, "Avg Order Value (AOV)", 0)
	w.money(2, row, kpis.AverageOrderValue, styles.currency)
	row++
	w.text(1, row, "# Transactions", 0)
	w.integer(2, row, int64(kpis.Transactions), styles.integer)
	row++
	w.text(1, row, "Top Region (by Rev)", 0)
	w.text(2, row, kpis.TopRegion, 0)
	row++
	w.text(1, row, "Top Product (by Rev)", 0)
	w.text(2, row, kpis.TopProduct, 0)

	// Region x product pivot with a Total row.
	w.headers(1, PivotHeaderRow, PivotHeader, styles.header)
	row = PivotHeaderRow + 1
	for _, group := range summary.Pivot {
		w.text(1, row, group.Region, 0)
		w.text(2, row, group.Product, 0)
		w.integer(3, row, group.UnitsSum, styles.integer)
		w.money(4, row, group.RevenueSum, styles.currency)
		row++
	}
	totalRow := row
	w.text(1, totalRow, "Total", styles.totalLabel)
	w.text(2, totalRow, "", styles.totalLabel)
	w.integer(3, totalRow, kpis.TotalUnits, styles.totalInt)
	w.money(4, totalRow, kpis.TotalRevenue, styles.totalAmount)

	// Revenue by region (chart source).
	w.headers(RegionColumn, PivotHeaderRow, []string{"region", "revenue_sum"}, styles.header)
	for i, region := range summary.Regions {
		w.text(RegionColumn, PivotHeaderRow+1+i, region.Region, 0)
		w.money(RegionColumn+1, PivotHeaderRow+1+i, region.RevenueSum, styles.currency)
	}

	// Revenue by product.
	w.headers(ProductColumn, PivotHeaderRow, []string{"product", "revenue_sum"}, styles.header)
	for i, product := range summary.Products {
		w.text(ProductColumn, PivotHeaderRow+1+i, product.Product, 0)
		w.money(ProductColumn+1, PivotHeaderRow+1+i, product.RevenueSum, styles.currency)
	}

	// Monthly trend.
	monthRow := MonthHeaderRow(len(summary.Pivot))
	w.headers(1, monthRow, []string{"month (YYYY-MM)", "units_sum", "revenue_sum"}, styles.header)
	for i, month := range summary.Months {
		w.text(1, monthRow+1+i, month.Month, 0)
		w.integer(2, monthRow+1+i, month.UnitsSum, styles.integer)
		w.money(3, monthRow+1+i, month.RevenueSum, styles.currency)
	}

	if w.err != nil {
		return w.err
	}

	for _, col := range w.widths.columns() {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetSummary, name, name, w.widths.width(col)); err != nil {
			return err
		}
	}

	if len(summary.Regions) == 0 {
		return nil
	}
	return f.AddChart(SheetSummary, ChartAnchor, regionChart(len(summary.Regions)))
}

// MonthHeaderRow returns the header row of the monthly table for a pivot of n groups.
func MonthHeaderRow(pivotGroups int) int {
	totalRow := PivotHeaderRow + 1 + pivotGroups
	return totalRow + monthGap
}

// regionChart builds the bar chart over the region table of n rows.
func regionChart(n int) *excelize.Chart {
	first := PivotHeaderRow + 1
	last := PivotHeaderRow + n
	catCol, _ := excelize.ColumnNumberToName(RegionColumn)
	valCol, _ := excelize.ColumnNumberToName(RegionColumn + 1)

	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$%d", SheetSummary, valCol, PivotHeaderRow),
			Categories: fmt.Sprintf("%s!$%s$%d:$%s$%d", SheetSummary, catCol, first, catCol, last),
			Values:     fmt.Sprintf("%s!$%s$%d:$%s$%d", SheetSummary, valCol, first, valCol, last),
		}},
		Title:  []excelize.RichTextRun{{Text: ChartTitle}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Region"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Revenue"}}},
		Legend: excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{
			Width:  640,
			Height: 360,
		},
	}
}
