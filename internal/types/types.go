// =============================================================================
// Sales Report - Shared Types
// =============================================================================
//
// This package contains the record types shared by the loaders, the report
// pipeline and the workbook writers. Keeping them here avoids import cycles
// between:
//   - report
//   - merger
//   - xlsxwriter
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEMA
// =============================================================================

// Column names of the sales CSV schema, in file order.
const (
	ColDate      = "date"
	ColRegion    = "region"
	ColProduct   = "product"
	ColUnits     = "units"
	ColUnitPrice = "unit_price"
	ColRevenue   = "revenue"
	ColSource    = "source_file"
)

// SalesHeader is the exact header every sales CSV must carry.
var SalesHeader = []string{ColDate, ColRegion, ColProduct, ColUnits, ColUnitPrice}

// Field positions inside Record.Fields.
const (
	FieldDate = iota
	FieldRegion
	FieldProduct
	FieldUnits
	FieldUnitPrice
	FieldCount
)

// =============================================================================
// RAW TABLE (LOADER OUTPUT)
// =============================================================================

// Record is a raw CSV data row that passed the header check.
type Record struct {
	// SourceFile is the path the row was read from.
	SourceFile string

	// RowNumber is the 1-based line number inside SourceFile (header is row 1).
	RowNumber int

	// Fields holds the raw values in SalesHeader order.
	// A nil Fields means the row had the wrong number of columns; Raw keeps
	// what was actually read so the transformer can report it.
	Fields []string

	// Raw is the row exactly as the CSV reader returned it.
	Raw []string
}

// Table is the unified set of records from every input, in input order.
type Table struct {
	Header  []string
	Records []Record

	// Files lists the inputs that contributed to the table, in load order.
	Files []string
}

// =============================================================================
// TRANSFORMED ROWS
// =============================================================================

// Row is a typed sales transaction.
// Revenue is always Units * UnitPrice; it is never read from input.
type Row struct {
	Date      time.Time
	Region    string
	Product   string
	Units     int64
	UnitPrice decimal.Decimal
	Revenue   decimal.Decimal

	SourceFile string
	RowNumber  int
}

// Month returns the YYYY-MM bucket of the transaction date.
func (r Row) Month() string {
	return r.Date.Format("2006-01")
}

// =============================================================================
// AGGREGATES
// =============================================================================

// AggregateKey identifies one pivot group.
type AggregateKey struct {
	Region  string
	Product string
}

// AggregateRow is one (region, product) group of the pivot.
type AggregateRow struct {
	Region     string
	Product    string
	UnitsSum   int64
	RevenueSum decimal.Decimal
}

// RegionTotal is revenue re-aggregated by region alone (chart data).
type RegionTotal struct {
	Region     string
	RevenueSum decimal.Decimal
}

// ProductTotal is revenue re-aggregated by product alone.
type ProductTotal struct {
	Product    string
	RevenueSum decimal.Decimal
}

// MonthTotal is the monthly trend bucket.
type MonthTotal struct {
	Month      string
	UnitsSum   int64
	RevenueSum decimal.Decimal
}

// KPISet holds the scalar totals over the full transaction set.
type KPISet struct {
	TotalRevenue decimal.Decimal
	TotalUnits   int64

	// AverageOrderValue is TotalRevenue / TotalUnits rounded to cents,
	// zero when no units were sold.
	AverageOrderValue decimal.Decimal

	Transactions int
	TopRegion    string
	TopProduct   string
}

// Summary is everything the Summary sheet renders.
type Summary struct {
	Pivot    []AggregateRow
	Regions  []RegionTotal
	Products []ProductTotal
	Months   []MonthTotal
	KPIs     KPISet
}

// =============================================================================
// WORKBOOK SHEETS (MERGE PIPELINE)
// =============================================================================

// Sheet is one worksheet read from an input workbook.
// Cell values are string, float64, bool or nil.
type Sheet struct {
	SourceFile string
	Name       string
	Header     []string
	Rows       [][]interface{}

	// Formats holds the number format of each column taken from the first
	// data row. A zero CellFormat means "General".
	Formats []CellFormat
}

// CellFormat is a column's number format: a built-in ID or a custom code.
type CellFormat struct {
	NumFmt       int
	CustomNumFmt string
}

// IsGeneral reports whether the format carries nothing worth copying.
func (c CellFormat) IsGeneral() bool {
	return c.NumFmt == 0 && c.CustomNumFmt == ""
}
