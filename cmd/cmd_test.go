package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/validation"
)

const salesHeaderLine = "date,region,product,units,unit_price\n"

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRunReport(t *testing.T) {
	dir := t.TempDir()
	q1 := writeFile(t, filepath.Join(dir, "q1.csv"), salesHeaderLine+"2024-01-05,East,Widget,1000,5.00\n")
	q2 := writeFile(t, filepath.Join(dir, "q2.csv"), salesHeaderLine+"2024-02-10,East,Widget,500,5.00\n")
	out := filepath.Join(dir, "reports", "sales_report.xlsx")

	var stdout bytes.Buffer
	err := runReport(context.Background(), config.Default(), []string{q1, q2}, out, &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Report written to "+out)
	assert.Contains(t, stdout.String(), "Rows:          2")
	assert.Contains(t, stdout.String(), "Total revenue: $7,500.00")
	assert.FileExists(t, out)
}

func TestRunReportRevenueIsExact(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "big.csv"), salesHeaderLine+"2024-01-05,East,Widget,1000000000,9007199254.74099301\n")

	var stdout bytes.Buffer
	err := runReport(context.Background(), config.Default(), []string{in}, filepath.Join(dir, "big.xlsx"), &stdout)
	require.NoError(t, err)

	// 9007199254740993010 has no exact float64 representation.
	assert.Contains(t, stdout.String(), "Total revenue: $9,007,199,254,740,993,010.00")
	assert.Contains(t, stdout.String(), "Rows:          1")
}

func TestRunReportErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "bad.csv"), "date,region,product,units\n")
	out := filepath.Join(dir, "report.xlsx")

	err := runReport(context.Background(), config.Default(), []string{bad}, out, &bytes.Buffer{})
	var mismatch *validation.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.NoFileExists(t, out)

	cfg := config.Default()
	cfg.Report.InvalidRows = "ignore"
	err = runReport(context.Background(), cfg, []string{bad}, out, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunMerge(t *testing.T) {
	dir := t.TempDir()
	header := []interface{}{"id", "amount"}
	a := writeWorkbook(t, filepath.Join(dir, "a.xlsx"), [][]interface{}{header, {1, 2.5}, {2, 3.5}})
	b := writeWorkbook(t, filepath.Join(dir, "b.xlsx"), [][]interface{}{header, {3, 4.5}})
	out := filepath.Join(dir, "merged.xlsx")

	var stdout bytes.Buffer
	err := runMerge(context.Background(), config.Default(), []string{a, b}, out, &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Merged 3 rows into "+out)
	assert.Contains(t, stdout.String(), a+": 2 rows")
	assert.FileExists(t, out)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	exports := filepath.Join(dir, "exports")
	writeFile(t, filepath.Join(exports, "b.csv"), salesHeaderLine)
	writeFile(t, filepath.Join(exports, "a.CSV"), salesHeaderLine)
	writeFile(t, filepath.Join(exports, "nested", "c.csv"), salesHeaderLine)
	writeFile(t, filepath.Join(exports, "notes.txt"), "x")
	writeFile(t, filepath.Join(exports, ".report.xlsx.tmp.csv"), "x")
	single := writeFile(t, filepath.Join(dir, "single.csv"), salesHeaderLine)
	missing := filepath.Join(dir, "missing.csv")

	got, err := expandInputs([]string{single, exports, missing}, ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(exports, "a.CSV"),
		filepath.Join(exports, "b.csv"),
		filepath.Join(exports, "nested", "c.csv"),
		missing,
	}, got)
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "sales.csv"), salesHeaderLine+"2024-01-05,East,Widget,10,5.00\n")
	out := filepath.Join(dir, "out.xlsx")
	cfgPath := writeFile(t, filepath.Join(dir, "salesreport.yaml"), "report:\n  include_source: true\nlogging:\n  level: error\n")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"report", "--config", cfgPath, "--out", out, "--on-invalid", "skip", in})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
		reportOut = ""
		reportOnInvalid = config.InvalidRowsAbort
		cfg = config.Default()
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Report written to "+out)

	// Flags override the file; values the flags leave alone come from it.
	assert.Equal(t, config.InvalidRowsSkip, cfg.Report.InvalidRows)
	assert.True(t, cfg.Report.IncludeSource)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	source, err := f.GetCellValue("Transactions", "G2")
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", source)
}

func TestOutFlagIsRequired(t *testing.T) {
	for _, c := range []*cobra.Command{reportCmd, mergeCmd} {
		flag := c.Flags().Lookup("out")
		require.NotNil(t, flag, c.Name())
		assert.Empty(t, flag.DefValue, c.Name())
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], c.Name())
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Sales Report")
	assert.Contains(t, stdout.String(), "Version:    "+Version)
}
