// =============================================================================
// Sales Report - Number Formatting
// =============================================================================
//
// Human-readable counts and money for the CLI summary and column widths.
//
// =============================================================================

package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 1,234,567.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatMoney renders d rounded to cents with a dollar sign and thousands
// separators, e.g. $7,500.00. The digits come from the decimal itself, never
// from a float64. A whole part too large for int64 is printed ungrouped.
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = FormatCount(n)
	}
	return sign + "$" + whole + "." + cents
}
