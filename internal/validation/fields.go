package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayouts are the accepted spellings of the date column, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// MaxUnits is the largest units value a single row may carry. Keeping rows
// below it keeps every int64 units sum exact for any input that fits in memory.
const MaxUnits int64 = 1_000_000_000

// ParseUnits parses a base-10 integer in [0, MaxUnits].
// The returned string is empty on success, otherwise the reason it failed.
func ParseUnits(value string) (int64, string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, "value is empty"
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, unitsOutOfRange
	}
	if err != nil {
		return 0, "not an integer"
	}
	if n < 0 {
		return 0, "must not be negative"
	}
	if n > MaxUnits {
		return 0, unitsOutOfRange
	}
	return n, ""
}

var unitsOutOfRange = fmt.Sprintf("out of range (maximum %d)", MaxUnits)

// ParseUnitPrice parses a non-negative decimal price without going through float64.
func ParseUnitPrice(value string) (decimal.Decimal, string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return decimal.Zero, "value is empty"
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, "not a decimal number"
	}
	if d.IsNegative() {
		return decimal.Zero, "must not be negative"
	}
	return d, ""
}

// ParseDate parses the date column with DateLayouts.
func ParseDate(value string) (time.Time, string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, "value is empty"
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, ""
		}
	}
	return time.Time{}, fmt.Sprintf("not a date (accepted: %s)", strings.Join(DateLayouts[:3], ", "))
}

// RequireText checks a categorical column is not blank.
func RequireText(value string) (string, string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", "value is empty"
	}
	return v, ""
}
