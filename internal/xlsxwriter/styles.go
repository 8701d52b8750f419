package xlsxwriter

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report/internal/types"
)

// Number formats of the output contract.
const (
	CurrencyFormat = "$#,##0.00"
	IntegerFormat  = "#,##0"
	DateFormat     = "yyyy-mm-dd"
)

// styleSet holds the style IDs registered in one workbook.
type styleSet struct {
	bold        int // plain bold header
	header      int // bold, grey fill, centred (Summary tables)
	label       int // bold, grey fill (KPI block header)
	integer     int
	currency    int
	date        int
	totalLabel  int // bold with a thin top border
	totalInt    int
	totalAmount int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	currency := CurrencyFormat
	integer := IntegerFormat
	date := DateFormat

	grey := excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1}
	topBorder := []excelize.Border{{Type: "top", Color: "000000", Style: 1}}
	bold := &excelize.Font{Bold: true}

	s := &styleSet{}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.bold, &excelize.Style{Font: bold}},
		{&s.header, &excelize.Style{Font: bold, Fill: grey, Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&s.label, &excelize.Style{Font: bold, Fill: grey}},
		{&s.integer, &excelize.Style{CustomNumFmt: &integer}},
		{&s.currency, &excelize.Style{CustomNumFmt: &currency}},
		{&s.date, &excelize.Style{CustomNumFmt: &date}},
		{&s.totalLabel, &excelize.Style{Font: bold, Border: topBorder}},
		{&s.totalInt, &excelize.Style{Font: bold, Border: topBorder, CustomNumFmt: &integer}},
		{&s.totalAmount, &excelize.Style{Font: bold, Border: topBorder, CustomNumFmt: &currency}},
	}

	for _, def := range defs {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return nil, fmt.Errorf("failed to register style: %w", err)
		}
		*def.dst = id
	}

	return s, nil
}

// formatStyles registers one style per distinct non-general column format.
// The returned slice holds 0 for general columns.
func formatStyles(f *excelize.File, formats []types.CellFormat) ([]int, error) {
	ids := make([]int, len(formats))
	cache := make(map[types.CellFormat]int)

	for i, format := range formats {
		if format.IsGeneral() {
			continue
		}
		if id, ok := cache[format]; ok {
			ids[i] = id
			continue
		}

		style := &excelize.Style{NumFmt: format.NumFmt}
		if format.CustomNumFmt != "" {
			custom := format.CustomNumFmt
			style.CustomNumFmt = &custom
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, fmt.Errorf("failed to register column format: %w", err)
		}
		cache[format] = id
		ids[i] = id
	}

	return ids, nil
}

// widthTracker records the longest rendered value per column (1-based).
type widthTracker map[int]int

func (w widthTracker) observe(col int, text string) {
	if n := len([]rune(text)); n > w[col] {
		w[col] = n
	}
}

// width applies the autofit rule: content length + 2, at least 10.
func (w widthTracker) width(col int) float64 {
	n := w[col] + 2
	if n < 10 {
		n = 10
	}
	return float64(n)
}

// columns returns the observed columns in ascending order.
func (w widthTracker) columns() []int {
	cols := make([]int, 0, len(w))
	for col := range w {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	return cols
}
