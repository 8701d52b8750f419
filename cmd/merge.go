// =============================================================================
// Sales Report - Merge Command
// =============================================================================
//
// This file defines the 'merge' command, which concatenates the same sheet of
// several workbooks into one workbook.
//
// COMMAND USAGE:
//   salesreport merge --inputs a.xlsx b.xlsx --out merged.xlsx
//   salesreport merge a.xlsx b.xlsx --out merged.xlsx --sheet Data --add-source
//
// FLAGS:
//   --inputs      : Input workbooks or directories (positional args are appended)
//   --out         : Output workbook (required)
//   --sheet       : Sheet to read from every input (default: first sheet)
//   --add-source  : Add a source_file column
//
// =============================================================================

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/logging"
	"github.com/ginjaninja78/sales-report/internal/merger"
)

var (
	mergeInputs    []string
	mergeOut       string
	mergeSheet     string
	mergeAddSource bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge [inputs...]",
	Short: "Merge workbooks with identical headers into one sheet",
	Long: `The merge command reads the same sheet from every input workbook, checks
that all headers match the first workbook's header in name and order, and
writes every row, in input order, to the "Merged" sheet of a new workbook.

Number formats of the first workbook's columns are kept.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := expandInputs(append(append([]string(nil), mergeInputs...), args...), ".xlsx")
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("sheet") {
			cfg.Merge.Sheet = mergeSheet
		}
		if flags.Changed("add-source") {
			cfg.Merge.AddSource = mergeAddSource
		}

		return runMerge(cmd.Context(), cfg, inputs, mergeOut, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringSliceVarP(
		&mergeInputs,
		"inputs",
		"i",
		nil,
		"Input workbooks or directories (repeatable, comma-separated)",
	)

	mergeCmd.Flags().StringVarP(
		&mergeOut,
		"out",
		"o",
		"",
		"Output workbook path (replaced if it exists)",
	)
	_ = mergeCmd.MarkFlagRequired("out")

	mergeCmd.Flags().StringVar(
		&mergeSheet,
		"sheet",
		"",
		"Sheet to read from every input (default: first sheet)",
	)

	mergeCmd.Flags().BoolVar(
		&mergeAddSource,
		"add-source",
		false,
		"Add a source_file column with the input file name",
	)
}

// runMerge merges the workbooks and prints a summary to w.
func runMerge(ctx context.Context, c *config.Config, inputs []string, out string, w io.Writer) error {
	result, err := merger.New(merger.OptionsFromConfig(c), logging.Logger).Run(ctx, inputs, out)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Merged %d rows into %s\n", result.RowsWritten, result.OutputFile)
	for i, file := range result.Files {
		p.Fprintf(w, "  %s: %d rows\n", file, result.RowsPerFile[i])
	}
	p.Fprintf(w, "  Time elapsed: %s\n", result.Duration)

	return nil
}
