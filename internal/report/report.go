// =============================================================================
// Sales Report - Report Pipeline
// =============================================================================
//
// This module orchestrates the report pipeline, from the input CSV files to
// the saved workbook.
//
// PIPELINE:
//   1. Load and validate every input file (Loader)
//   2. Coerce fields and compute revenue (Transformer)
//   3. Write the rejected-row log, if configured
//   4. Apply the empty-input policy
//   5. Aggregate pivot, totals, monthly trend and KPIs (Aggregate)
//   6. Render and atomically save the workbook (xlsxwriter)
//
// A failure at any step stops the run before the output is touched, so an
// existing report is never left half-written.
//
// =============================================================================

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/logging"
	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/internal/validation"
	"github.com/ginjaninja78/sales-report/internal/xlsxwriter"
	"github.com/ginjaninja78/sales-report/pkg/utils"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options controls one report run.
type Options struct {
	// InvalidRows is one of config.InvalidRowsAbort, Skip or Zero.
	InvalidRows string

	// EmptyInput is config.EmptyInputAbort or config.EmptyInputWrite.
	EmptyInput string

	// IncludeSource adds a source_file column to the Transactions sheet.
	IncludeSource bool

	// RejectedLog, when set, receives every skipped or coerced row.
	RejectedLog string

	// CSV is the input dialect.
	CSV config.CSVSettings
}

// OptionsFromConfig maps the loaded configuration onto report Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InvalidRows:   cfg.Report.InvalidRows,
		EmptyInput:    cfg.Report.EmptyInput,
		IncludeSource: cfg.Report.IncludeSource,
		RejectedLog:   cfg.Report.RejectedLog,
		CSV:           cfg.CSVSettings,
	}
}

// Result describes a successful run.
type Result struct {
	OutputFile string
	Files      []string

	RowsRead    int
	RowsWritten int
	RowsSkipped int
	RowsCoerced int

	Summary  types.Summary
	Duration time.Duration
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder runs the report pipeline.
type Builder struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Builder. A nil logger discards all output.
func New(opts Options, logger *zap.Logger) (*Builder, error) {
	if opts.InvalidRows == "" {
		opts.InvalidRows = config.InvalidRowsAbort
	}
	if opts.EmptyInput == "" {
		opts.EmptyInput = config.EmptyInputAbort
	}
	if opts.EmptyInput != config.EmptyInputAbort && opts.EmptyInput != config.EmptyInputWrite {
		return nil, fmt.Errorf("unknown empty-input policy: %q", opts.EmptyInput)
	}
	if _, err := NewTransformer(opts.InvalidRows, nil); err != nil {
		return nil, err
	}

	return &Builder{
		opts:   opts,
		logger: logging.OrNop(logger),
	}, nil
}

// Run builds the report from inputs and saves it at out.
//
// PARAMETERS:
//   - ctx: Checked between input files.
//   - inputs: The CSV files, in order.
//   - out: The workbook path. An existing file is replaced atomically.
//
// RETURNS:
//   - The run statistics.
//   - *validation.FileNotFoundError, *validation.SchemaMismatchError,
//     *validation.DataValidationError, *validation.EmptyInputError or
//     *validation.WritePermissionError, depending on the failing step.
func (b *Builder) Run(ctx context.Context, inputs []string, out string) (*Result, error) {
	startTime := time.Now()
	logger := b.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("pipeline", "report"),
	)

	// =========================================================================
	// STEP 1: LOAD INPUTS
	// =========================================================================

	logger.Info("loading inputs", zap.Int("files", len(inputs)))

	table, err := NewLoader(b.opts.CSV, logger).Load(ctx, inputs)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2: TRANSFORM
	// =========================================================================

	transformer, err := NewTransformer(b.opts.InvalidRows, logger)
	if err != nil {
		return nil, err
	}

	transformed, err := transformer.Transform(table)
	if err != nil {
		return nil, err
	}

	logger.Debug("transformed rows",
		zap.Int("read", len(table.Records)),
		zap.Int("kept", len(transformed.Rows)),
		zap.Int("skipped", transformed.SkippedRows),
		zap.Int("coerced", transformed.CoercedRows),
	)

	// =========================================================================
	// STEP 3: REJECTED-ROW LOG
	// =========================================================================

	if b.opts.RejectedLog != "" && len(transformed.Issues) > 0 {
		entries := make([]utils.RejectedLogEntry, len(transformed.Issues))
		for i, issue := range transformed.Issues {
			entries[i] = utils.RejectedLogEntry{Action: issue.Action, Issue: issue.Err}
		}
		if err := utils.WriteRejectedLog(entries, b.opts.RejectedLog); err != nil {
			return nil, err
		}
		logger.Info("wrote rejected-row log",
			zap.String("path", b.opts.RejectedLog),
			zap.Int("issues", len(entries)),
		)
	}

	// =========================================================================
	// STEP 4: EMPTY-INPUT POLICY
	// =========================================================================

	if len(transformed.Rows) == 0 {
		if b.opts.EmptyInput == config.EmptyInputAbort {
			return nil, &validation.EmptyInputError{
				Files:    table.Files,
				Rejected: transformed.SkippedRows,
				Issues:   transformed.IssueErrors(),
			}
		}
		logger.Warn("no usable rows, writing an empty report")
	}

	// =========================================================================
	// STEP 5: AGGREGATE
	// =========================================================================

	summary := Aggregate(transformed.Rows)

	// =========================================================================
	// STEP 6: WRITE WORKBOOK
	// =========================================================================

	err = xlsxwriter.WriteReport(out, transformed.Rows, summary, xlsxwriter.ReportOptions{
		IncludeSource: b.opts.IncludeSource,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		OutputFile:  out,
		Files:       table.Files,
		RowsRead:    len(table.Records),
		RowsWritten: len(transformed.Rows),
		RowsSkipped: transformed.SkippedRows,
		RowsCoerced: transformed.CoercedRows,
		Summary:     summary,
		Duration:    time.Since(startTime),
	}

	logger.Info("report written",
		zap.String("output", out),
		zap.Int("rows", result.RowsWritten),
		zap.Int("groups", len(summary.Pivot)),
		zap.String("revenue", summary.KPIs.TotalRevenue.StringFixed(2)),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
