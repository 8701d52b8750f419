package merger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/internal/validation"
	"github.com/ginjaninja78/sales-report/internal/xlsxwriter"
)

// writeWorkbook creates a workbook whose sheet holds header and n numbered rows
// tagged with tag, e.g. {"a-1", 1}.
func writeWorkbook(t *testing.T, dir, name, sheet string, header []interface{}, tag string, n int) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i := 1; i <= n; i++ {
		row := []interface{}{fmt.Sprintf("%s-%d", tag, i), i}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

var header = []interface{}{"order", "qty"}

func TestRunMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeWorkbook(t, dir, "a.xlsx", "Sheet1", header, "a", 3)
	b := writeWorkbook(t, dir, "b.xlsx", "Sheet1", header, "b", 5)
	out := filepath.Join(dir, "merged", "merged.xlsx")

	result, err := New(Options{Sheet: "Sheet1"}, nil).Run(context.Background(), []string{a, b}, out)
	require.NoError(t, err)
	assert.Equal(t, 8, result.RowsWritten)
	assert.Equal(t, []int{3, 5}, result.RowsPerFile)
	assert.Equal(t, []string{a, b}, result.Files)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{xlsxwriter.SheetMerged}, f.GetSheetList())

	rows, err := f.GetRows(xlsxwriter.SheetMerged, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, []string{"order", "qty"}, rows[0])

	var order []string
	for _, row := range rows[1:] {
		order = append(order, row[0])
	}
	assert.Equal(t, []string{"a-1", "a-2", "a-3", "b-1", "b-2", "b-3", "b-4", "b-5"}, order)
	assert.Equal(t, "5", rows[8][1])
}

func TestRunAddSource(t *testing.T) {
	dir := t.TempDir()
	a := writeWorkbook(t, dir, "a.xlsx", "Data", header, "a", 1)
	b := writeWorkbook(t, dir, "b.xlsx", "Data", header, "b", 2)
	out := filepath.Join(dir, "merged.xlsx")

	_, err := New(Options{Sheet: "Data", AddSource: true}, nil).Run(context.Background(), []string{a, b}, out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxwriter.SheetMerged)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"order", "qty", "source_file"}, rows[0])
	assert.Equal(t, "a.xlsx", rows[1][2])
	assert.Equal(t, "b.xlsx", rows[2][2])
	assert.Equal(t, "b.xlsx", rows[3][2])
}

func TestRunDefaultsToFirstSheet(t *testing.T) {
	dir := t.TempDir()
	a := writeWorkbook(t, dir, "a.xlsx", "January", header, "a", 2)
	b := writeWorkbook(t, dir, "b.xlsx", "February", header, "b", 2)

	result, err := New(Options{}, nil).Run(context.Background(), []string{a, b}, filepath.Join(dir, "m.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, 4, result.RowsWritten)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeWorkbook(t, dir, "a.xlsx", "Sheet1", header, "a", 1)
	renamed := writeWorkbook(t, dir, "renamed.xlsx", "Sheet1", []interface{}{"order", "quantity"}, "r", 1)
	reordered := writeWorkbook(t, dir, "reordered.xlsx", "Sheet1", []interface{}{"qty", "order"}, "r", 1)
	otherSheet := writeWorkbook(t, dir, "other.xlsx", "Notes", header, "o", 1)

	ctx := context.Background()
	m := New(Options{Sheet: "Sheet1"}, nil)

	t.Run("no inputs", func(t *testing.T) {
		_, err := m.Load(ctx, nil)
		assert.True(t, errors.Is(err, ErrNoInputs))
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.xlsx")
		_, err := m.Load(ctx, []string{a, missing})
		var notFound *validation.FileNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, missing, notFound.Path)
	})

	t.Run("header differs", func(t *testing.T) {
		_, err := m.Load(ctx, []string{a, renamed})
		var mismatch *validation.SchemaMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, renamed, mismatch.File)
		assert.Equal(t, a, mismatch.Reference)
		assert.Equal(t, "Sheet1", mismatch.Sheet)
		assert.Equal(t, []string{"order", "qty"}, mismatch.Expected)
		assert.Equal(t, []string{"order", "quantity"}, mismatch.Actual)
	})

	t.Run("header order differs", func(t *testing.T) {
		_, err := m.Load(ctx, []string{a, reordered})
		var mismatch *validation.SchemaMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Contains(t, err.Error(), "column order differs")
	})

	t.Run("sheet missing", func(t *testing.T) {
		_, err := m.Load(ctx, []string{a, otherSheet})
		var notFound *validation.SheetNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, otherSheet, notFound.File)
		assert.Equal(t, []string{"Notes"}, notFound.Available)
	})
}

func TestRunFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := writeWorkbook(t, dir, "a.xlsx", "Sheet1", header, "a", 1)
	renamed := writeWorkbook(t, dir, "renamed.xlsx", "Sheet1", []interface{}{"order", "quantity"}, "r", 1)
	out := filepath.Join(dir, "merged.xlsx")

	_, err := New(Options{}, nil).Run(context.Background(), []string{a, renamed}, out)
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConcatenate(t *testing.T) {
	first := &types.Sheet{
		SourceFile: "/in/a.xlsx",
		Header:     []string{"x", "y"},
		Rows:       [][]interface{}{{1.0, "a"}, {2.0, nil}},
		Formats:    []types.CellFormat{{NumFmt: 14}, {}},
	}
	second := &types.Sheet{
		SourceFile: "/in/b.xlsx",
		Header:     []string{"x", "y"},
		Rows:       [][]interface{}{{3.0, true}},
		Formats:    []types.CellFormat{{}, {CustomNumFmt: "0.0"}},
	}

	merged := Concatenate([]*types.Sheet{first, second}, false)
	assert.Equal(t, xlsxwriter.SheetMerged, merged.Name)
	assert.Equal(t, []string{"x", "y"}, merged.Header)
	assert.Equal(t, [][]interface{}{{1.0, "a"}, {2.0, nil}, {3.0, true}}, merged.Rows)
	assert.Equal(t, first.Formats, merged.Formats)

	tagged := Concatenate([]*types.Sheet{first, second}, true)
	assert.Equal(t, []string{"x", "y", "source_file"}, tagged.Header)
	assert.Len(t, tagged.Formats, 3)
	assert.Equal(t, []interface{}{3.0, true, "b.xlsx"}, tagged.Rows[2])

	// The inputs are not modified.
	assert.Len(t, first.Rows[0], 2)
	assert.Len(t, first.Header, 2)

	empty := Concatenate(nil, true)
	assert.Empty(t, empty.Header)
	assert.Empty(t, empty.Rows)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Merge.Sheet = "Data"
	cfg.Merge.AddSource = true

	assert.Equal(t, Options{Sheet: "Data", AddSource: true}, OptionsFromConfig(cfg))
}
