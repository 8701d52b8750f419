// =============================================================================
// Sales Report - Workbook Merger
// =============================================================================
//
// This module concatenates the same worksheet of several workbooks into one
// workbook with a single "Merged" sheet.
//
// PIPELINE:
//   1. Check that every input exists
//   2. Read the requested sheet of each input (xlsxparser)
//   3. Compare every header with the first input's header
//   4. Append all rows in input order, optionally tagging the source file
//   5. Save the merged workbook atomically (xlsxwriter)
//
// Headers must match exactly in name and order. Rows are never
// deduplicated: 3 rows + 5 rows always merge into 8 rows.
//
// =============================================================================

package merger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/logging"
	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/internal/validation"
	"github.com/ginjaninja78/sales-report/internal/xlsxparser"
	"github.com/ginjaninja78/sales-report/internal/xlsxwriter"
	"github.com/ginjaninja78/sales-report/pkg/utils"
)

// ErrNoInputs is returned when no workbook is given.
var ErrNoInputs = errors.New("no input workbooks given")

// Options controls one merge run.
type Options struct {
	// Sheet is the worksheet to read from every input. Empty selects
	// the first sheet of each workbook.
	Sheet string

	// AddSource appends a source_file column holding the input file name.
	AddSource bool
}

// OptionsFromConfig maps the loaded configuration onto merge Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Sheet:     cfg.Merge.Sheet,
		AddSource: cfg.Merge.AddSource,
	}
}

// Result describes a successful merge.
type Result struct {
	OutputFile string
	Files      []string

	// RowsPerFile holds the data row count of each input, in input order.
	RowsPerFile []int
	RowsWritten int

	Duration time.Duration
}

// Merger runs the merge pipeline.
type Merger struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Merger. A nil logger discards all output.
func New(opts Options, logger *zap.Logger) *Merger {
	return &Merger{
		opts:   opts,
		logger: logging.OrNop(logger),
	}
}

// Load reads the configured sheet of every workbook in order and checks that
// all headers equal the first workbook's header.
//
// RETURNS:
//   - One Sheet per input.
//   - *validation.FileNotFoundError, *validation.SheetNotFoundError,
//     *validation.SchemaMismatchError or the read error of the failing file.
func (m *Merger) Load(ctx context.Context, paths []string) ([]*types.Sheet, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	if err := utils.RequireInputs(paths); err != nil {
		return nil, err
	}

	sheets := make([]*types.Sheet, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, err := xlsxparser.ReadSheet(path, m.opts.Sheet)
		if err != nil {
			var notFound *validation.SheetNotFoundError
			var invalid *validation.DataValidationError
			if errors.As(err, &notFound) || errors.As(err, &invalid) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if len(sheets) > 0 {
			reference := sheets[0]
			if err := validation.ValidateHeader(path, reference.Header, sheet.Header); err != nil {
				var mismatch *validation.SchemaMismatchError
				if errors.As(err, &mismatch) {
					mismatch.Sheet = sheet.Name
					mismatch.Reference = reference.SourceFile
				}
				return nil, err
			}
		}

		m.logger.Debug("loaded workbook",
			zap.String("file", path),
			zap.String("sheet", sheet.Name),
			zap.Int("rows", len(sheet.Rows)),
		)
		sheets = append(sheets, sheet)
	}

	return sheets, nil
}

// Concatenate appends the rows of all sheets in order under the first
// sheet's header. Column formats are taken from the first sheet. With
// addSource a source_file column holding each row's file name is appended.
func Concatenate(sheets []*types.Sheet, addSource bool) *types.Sheet {
	merged := &types.Sheet{Name: xlsxwriter.SheetMerged}
	if len(sheets) == 0 {
		return merged
	}

	first := sheets[0]
	merged.Header = append([]string(nil), first.Header...)
	merged.Formats = append([]types.CellFormat(nil), first.Formats...)
	if addSource {
		merged.Header = append(merged.Header, types.ColSource)
		merged.Formats = append(merged.Formats, types.CellFormat{})
	}

	total := 0
	for _, sheet := range sheets {
		total += len(sheet.Rows)
	}
	merged.Rows = make([][]interface{}, 0, total)

	for _, sheet := range sheets {
		source := filepath.Base(sheet.SourceFile)
		for _, row := range sheet.Rows {
			out := append([]interface{}(nil), row...)
			if addSource {
				out = append(out, source)
			}
			merged.Rows = append(merged.Rows, out)
		}
	}

	return merged
}

// Run merges inputs into a new workbook at out.
func (m *Merger) Run(ctx context.Context, inputs []string, out string) (*Result, error) {
	startTime := time.Now()
	logger := m.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("pipeline", "merge"),
	)

	logger.Info("loading workbooks", zap.Int("files", len(inputs)))

	sheets, err := New(m.opts, logger).Load(ctx, inputs)
	if err != nil {
		return nil, err
	}

	merged := Concatenate(sheets, m.opts.AddSource)
	if err := xlsxwriter.WriteMerged(out, merged); err != nil {
		return nil, err
	}

	result := &Result{
		OutputFile:  out,
		RowsWritten: len(merged.Rows),
		Duration:    time.Since(startTime),
	}
	for _, sheet := range sheets {
		result.Files = append(result.Files, sheet.SourceFile)
		result.RowsPerFile = append(result.RowsPerFile, len(sheet.Rows))
	}

	logger.Info("merged workbook written",
		zap.String("output", out),
		zap.Int("rows", result.RowsWritten),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
