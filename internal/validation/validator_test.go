package validation

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesHeader = []string{"date", "region", "product", "units", "unit_price"}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name     string
		actual   []string
		wantErr  bool
		contains []string
	}{
		{
			name:   "exact match",
			actual: []string{"date", "region", "product", "units", "unit_price"},
		},
		{
			name:     "missing column",
			actual:   []string{"date", "region", "product", "units"},
			wantErr:  true,
			contains: []string{"sales.csv", "missing: unit_price"},
		},
		{
			name:     "unexpected column",
			actual:   []string{"date", "region", "product", "units", "unit_price", "discount"},
			wantErr:  true,
			contains: []string{"unexpected: discount"},
		},
		{
			name:     "same names in another order",
			actual:   []string{"region", "date", "product", "units", "unit_price"},
			wantErr:  true,
			contains: []string{"column order differs"},
		},
		{
			name:     "empty header",
			actual:   nil,
			wantErr:  true,
			contains: []string{"missing: date, region, product, units, unit_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader("sales.csv", salesHeader, tt.actual)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var mismatch *SchemaMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "sales.csv", mismatch.File)
			assert.Equal(t, salesHeader, mismatch.Expected)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestSchemaMismatchErrorWithSheetAndReference(t *testing.T) {
	err := &SchemaMismatchError{
		File:      "b.xlsx",
		Sheet:     "Data",
		Expected:  []string{"a", "b"},
		Actual:    []string{"a", "c"},
		Reference: "a.xlsx",
	}

	msg := err.Error()
	assert.Contains(t, msg, "b.xlsx [Data]")
	assert.Contains(t, msg, "missing: b")
	assert.Contains(t, msg, "unexpected: c")
	assert.Contains(t, msg, "reference header taken from a.xlsx")
}

func TestErrorMessages(t *testing.T) {
	notFound := &FileNotFoundError{Path: "missing.csv", Err: fs.ErrNotExist}
	assert.Equal(t, "input file not found: missing.csv", notFound.Error())
	assert.True(t, errors.Is(notFound, fs.ErrNotExist))

	sheet := &SheetNotFoundError{File: "a.xlsx", Sheet: "Data", Available: []string{"Sheet1", "Notes"}}
	assert.Equal(t, `sheet "Data" not found in a.xlsx (available: Sheet1, Notes)`, sheet.Error())

	row := &DataValidationError{File: "a.csv", Row: 3, Field: "units", Value: "x", Reason: "not an integer"}
	assert.Equal(t, "a.csv row 3, field 'units': not an integer (value: 'x')", row.Error())

	rowOnly := &DataValidationError{File: "a.csv", Row: 4, Reason: "expected 5 fields, got 3"}
	assert.Equal(t, "a.csv row 4: expected 5 fields, got 3", rowOnly.Error())

	write := &WritePermissionError{Path: "out.xlsx", Err: fs.ErrPermission}
	assert.Contains(t, write.Error(), "out.xlsx")
	assert.True(t, errors.Is(write, fs.ErrPermission))

	empty := &EmptyInputError{Files: []string{"a.csv", "b.csv"}, Rejected: 2}
	assert.Equal(t, "no usable rows in 2 input file(s): a.csv, b.csv (2 row(s) rejected)", empty.Error())
}

func TestEmptyInputErrorListsIssues(t *testing.T) {
	var issues []*DataValidationError
	for row := 2; row <= 8; row++ {
		issues = append(issues, &DataValidationError{File: "a.csv", Row: row, Field: "units", Value: "x", Reason: "not an integer"})
	}

	err := &EmptyInputError{Files: []string{"a.csv"}, Rejected: len(issues), Issues: issues}
	lines := strings.Split(err.Error(), "\n")

	assert.Equal(t, "no usable rows in 1 input file(s): a.csv (7 row(s) rejected)", lines[0])
	assert.Equal(t, "Found 7 row issue(s):", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  1. a.csv row 2, field 'units'"))
	assert.Equal(t, "  ... and 2 more", lines[len(lines)-1])
	assert.Len(t, lines, 8)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil, 10))

	errs := []*DataValidationError{
		{File: "a.csv", Row: 2, Field: "units", Value: "x", Reason: "not an integer"},
		{File: "a.csv", Row: 3, Field: "unit_price", Value: "-1", Reason: "must not be negative"},
		{File: "b.csv", Row: 2, Reason: "expected 5 fields, got 4"},
	}

	all := FormatErrors(errs, 0)
	assert.True(t, strings.HasPrefix(all, "Found 3 row issue(s):\n"))
	assert.Contains(t, all, "  1. a.csv row 2, field 'units'")
	assert.Contains(t, all, "  3. b.csv row 2: expected 5 fields, got 4")
	assert.NotContains(t, all, "more")

	limited := FormatErrors(errs, 2)
	assert.Contains(t, limited, "  2. a.csv row 3")
	assert.NotContains(t, limited, "  3. ")
	assert.Contains(t, limited, "... and 1 more")
}
