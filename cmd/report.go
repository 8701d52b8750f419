// =============================================================================
// Sales Report - Report Command
// =============================================================================
//
// This file defines the 'report' command, which builds the sales workbook
// from one or more CSV exports.
//
// COMMAND USAGE:
//   salesreport report --inputs a.csv b.csv --out reports/sales_report.xlsx
//   salesreport report a.csv b.csv --out report.xlsx
//   salesreport report --inputs exports/ -o r.xlsx (every *.csv below exports/)
//
// FLAGS:
//   --inputs          : Input CSV files or directories (positional args are appended)
//   --out             : Output workbook (required)
//   --on-invalid      : abort | skip | zero
//   --on-empty        : abort | write
//   --include-source  : Add a source_file column to the Transactions sheet
//   --rejected-log    : Write skipped/coerced rows to this file
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/logging"
	"github.com/ginjaninja78/sales-report/internal/report"
	"github.com/ginjaninja78/sales-report/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	reportInputs        []string
	reportOut           string
	reportOnInvalid     string
	reportOnEmpty       string
	reportIncludeSource bool
	reportRejectedLog   string
)

// =============================================================================
// REPORT COMMAND DEFINITION
// =============================================================================

var reportCmd = &cobra.Command{
	Use:   "report [inputs...]",
	Short: "Build the sales report workbook from CSV files",
	Long: `The report command reads every input CSV file, checks that its header is
exactly date,region,product,units,unit_price, computes revenue as
units x unit_price and writes a workbook with two sheets:

  Transactions  one row per sale, with computed revenue
  Summary       KPIs, region x product pivot with totals, revenue by region
                and by product, monthly trend and a "Revenue by Region" chart

Malformed rows abort the run unless --on-invalid is skip or zero. An input
set without usable rows aborts unless --on-empty is write.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := expandInputs(append(append([]string(nil), reportInputs...), args...), ".csv")
		if err != nil {
			return err
		}

		applyReportFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid options: %w", err)
		}

		return runReport(cmd.Context(), cfg, inputs, reportOut, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringSliceVarP(
		&reportInputs,
		"inputs",
		"i",
		nil,
		"Input CSV files or directories (repeatable, comma-separated)",
	)

	reportCmd.Flags().StringVarP(
		&reportOut,
		"out",
		"o",
		"",
		"Output workbook path (replaced if it exists)",
	)
	_ = reportCmd.MarkFlagRequired("out")

	reportCmd.Flags().StringVar(
		&reportOnInvalid,
		"on-invalid",
		config.InvalidRowsAbort,
		"Malformed row policy: abort, skip or zero",
	)

	reportCmd.Flags().StringVar(
		&reportOnEmpty,
		"on-empty",
		config.EmptyInputAbort,
		"Policy when no usable rows remain: abort or write",
	)

	reportCmd.Flags().BoolVar(
		&reportIncludeSource,
		"include-source",
		false,
		"Add a source_file column to the Transactions sheet",
	)

	reportCmd.Flags().StringVar(
		&reportRejectedLog,
		"rejected-log",
		"",
		"Write skipped and coerced rows to this file",
	)
}

// applyReportFlags copies explicitly set flags over the configuration file values.
func applyReportFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("on-invalid") {
		c.Report.InvalidRows = reportOnInvalid
	}
	if flags.Changed("on-empty") {
		c.Report.EmptyInput = reportOnEmpty
	}
	if flags.Changed("include-source") {
		c.Report.IncludeSource = reportIncludeSource
	}
	if flags.Changed("rejected-log") {
		c.Report.RejectedLog = reportRejectedLog
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runReport builds the report and prints a summary to w.
func runReport(ctx context.Context, c *config.Config, inputs []string, out string, w io.Writer) error {
	builder, err := report.New(report.OptionsFromConfig(c), logging.Logger)
	if err != nil {
		return err
	}

	result, err := builder.Run(ctx, inputs, out)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Report written to %s\n", result.OutputFile)
	p.Fprintf(w, "  Files:         %d\n", len(result.Files))
	p.Fprintf(w, "  Rows:          %d\n", result.RowsWritten)
	if result.RowsSkipped > 0 || result.RowsCoerced > 0 {
		p.Fprintf(w, "  Skipped:       %d\n", result.RowsSkipped)
		p.Fprintf(w, "  Coerced:       %d\n", result.RowsCoerced)
	}
	p.Fprintf(w, "  Total revenue: %s\n", utils.FormatMoney(result.Summary.KPIs.TotalRevenue))
	p.Fprintf(w, "  Time elapsed:  %s\n", result.Duration)

	return nil
}
