// =============================================================================
// Sales Report - Transformation Engine
// =============================================================================
//
// This module turns raw CSV records into typed sales rows:
//   - date       -> time.Time (validation.DateLayouts)
//   - region     -> trimmed, non-empty
//   - product    -> trimmed, non-empty
//   - units      -> int64, >= 0
//   - unit_price -> decimal.Decimal, >= 0
//   - revenue    =  units * unit_price, exact decimal arithmetic
//
// INVALID ROW POLICY:
//   abort - the first bad row fails the run with a DataValidationError
//   skip  - bad rows are dropped and reported
//   zero  - bad units/unit_price are replaced by 0 and reported; rows whose
//           date, region, product or column count is bad are dropped, since
//           there is nothing sensible to coerce them to
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/logging"
	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/internal/validation"
)

// Actions recorded for a RowIssue.
const (
	ActionSkipped = "skipped"
	ActionCoerced = "coerced"
)

// RowIssue is one problem found under the skip or zero policy.
type RowIssue struct {
	Action string
	Err    *validation.DataValidationError
}

// TransformResult is the output of Transform.
type TransformResult struct {
	// Rows are the usable rows in input order.
	Rows []types.Row

	// SkippedRows counts rows excluded from Rows.
	SkippedRows int

	// CoercedRows counts rows kept with a zeroed units or unit_price.
	CoercedRows int

	// Issues lists every individual problem in input order.
	Issues []RowIssue
}

// IssueErrors returns the validation error of every issue, in order.
func (r *TransformResult) IssueErrors() []*validation.DataValidationError {
	errs := make([]*validation.DataValidationError, len(r.Issues))
	for i, issue := range r.Issues {
		errs[i] = issue.Err
	}
	return errs
}

// Transformer applies type coercion and the revenue computation.
type Transformer struct {
	policy string
	logger *zap.Logger
}

// NewTransformer creates a Transformer with one of the config.InvalidRows* policies.
func NewTransformer(policy string, logger *zap.Logger) (*Transformer, error) {
	switch policy {
	case config.InvalidRowsAbort, config.InvalidRowsSkip, config.InvalidRowsZero:
	case "":
		policy = config.InvalidRowsAbort
	default:
		return nil, fmt.Errorf("unknown invalid-row policy: %q", policy)
	}
	return &Transformer{
		policy: policy,
		logger: logging.OrNop(logger),
	}, nil
}

// fieldIssue is a validation failure plus whether the zero policy may repair it.
type fieldIssue struct {
	err       *validation.DataValidationError
	coercible bool
}

// Transform converts every record of the table. The table is not modified.
//
// RETURNS:
//   - The typed rows and the issues found.
//   - The first *validation.DataValidationError under the abort policy.
func (t *Transformer) Transform(table *types.Table) (*TransformResult, error) {
	result := &TransformResult{
		Rows: make([]types.Row, 0, len(table.Records)),
	}

	for _, record := range table.Records {
		row, issues := parseRecord(record)
		if len(issues) == 0 {
			result.Rows = append(result.Rows, row)
			continue
		}

		if t.policy == config.InvalidRowsAbort {
			return nil, issues[0].err
		}

		action := ActionCoerced
		if t.policy == config.InvalidRowsSkip {
			action = ActionSkipped
		} else {
			for _, issue := range issues {
				if !issue.coercible {
					action = ActionSkipped
					break
				}
			}
		}

		for _, issue := range issues {
			result.Issues = append(result.Issues, RowIssue{Action: action, Err: issue.err})
			t.logger.Warn("invalid row "+action,
				zap.String("file", issue.err.File),
				zap.Int("row", issue.err.Row),
				zap.String("field", issue.err.Field),
				zap.String("value", issue.err.Value),
				zap.String("reason", issue.err.Reason),
			)
		}

		if action == ActionSkipped {
			result.SkippedRows++
			continue
		}

		// parseRecord left the bad numeric fields at zero.
		row.Revenue = decimal.NewFromInt(row.Units).Mul(row.UnitPrice)
		result.Rows = append(result.Rows, row)
		result.CoercedRows++
	}

	return result, nil
}

// parseRecord builds a Row from a record, collecting every field problem.
// Fields that fail are left at their zero value.
func parseRecord(record types.Record) (types.Row, []fieldIssue) {
	row := types.Row{
		SourceFile: record.SourceFile,
		RowNumber:  record.RowNumber,
		UnitPrice:  decimal.Zero,
		Revenue:    decimal.Zero,
	}

	if record.Fields == nil {
		return row, []fieldIssue{{
			err: &validation.DataValidationError{
				File: record.SourceFile,
				Row:  record.RowNumber,
				Reason: fmt.Sprintf("expected %d fields, got %d",
					types.FieldCount, len(record.Raw)),
			},
		}}
	}

	var issues []fieldIssue
	fail := func(field, value, reason string, coercible bool) {
		issues = append(issues, fieldIssue{
			err: &validation.DataValidationError{
				File:   record.SourceFile,
				Row:    record.RowNumber,
				Field:  field,
				Value:  value,
				Reason: reason,
			},
			coercible: coercible,
		})
	}

	fields := record.Fields

	if date, reason := validation.ParseDate(fields[types.FieldDate]); reason != "" {
		fail(types.ColDate, fields[types.FieldDate], reason, false)
	} else {
		row.Date = date
	}

	if region, reason := validation.RequireText(fields[types.FieldRegion]); reason != "" {
		fail(types.ColRegion, fields[types.FieldRegion], reason, false)
	} else {
		row.Region = region
	}

	if product, reason := validation.RequireText(fields[types.FieldProduct]); reason != "" {
		fail(types.ColProduct, fields[types.FieldProduct], reason, false)
	} else {
		row.Product = product
	}

	if units, reason := validation.ParseUnits(fields[types.FieldUnits]); reason != "" {
		fail(types.ColUnits, fields[types.FieldUnits], reason, true)
	} else {
		row.Units = units
	}

	if price, reason := validation.ParseUnitPrice(fields[types.FieldUnitPrice]); reason != "" {
		fail(types.ColUnitPrice, fields[types.FieldUnitPrice], reason, true)
	} else {
		row.UnitPrice = price
	}

	row.Revenue = decimal.NewFromInt(row.Units).Mul(row.UnitPrice)

	return row, issues
}
