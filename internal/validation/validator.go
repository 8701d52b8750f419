// =============================================================================
// Sales Report - Validation
// =============================================================================
//
// This module defines the error taxonomy shared by both pipelines and the
// checks that produce those errors:
//   - Header validation against the fixed sales schema (or a reference header)
//   - Field validation for the numeric and date columns of a sales row
//
// ERROR HANDLING:
//   - Every error type carries the file (and row, where applicable) so the
//     user can fix the input without re-running in verbose mode.
//   - All errors are fatal to the run; the skip/zero policies of the
//     transformer collect DataValidationErrors as warnings instead.
//   - Callers match the types with errors.As.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// FileNotFoundError is returned when an input path does not exist.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// SchemaMismatchError is returned when a header differs from the expected one.
type SchemaMismatchError struct {
	// File is the offending input.
	File string

	// Sheet is set for workbook inputs.
	Sheet string

	Expected []string
	Actual   []string

	// Reference names the file whose header was used as Expected
	// (merge pipeline only).
	Reference string
}

func (e *SchemaMismatchError) Error() string {
	where := e.File
	if e.Sheet != "" {
		where = fmt.Sprintf("%s [%s]", e.File, e.Sheet)
	}

	var detail []string
	if missing := difference(e.Expected, e.Actual); len(missing) > 0 {
		detail = append(detail, "missing: "+strings.Join(missing, ", "))
	}
	if extra := difference(e.Actual, e.Expected); len(extra) > 0 {
		detail = append(detail, "unexpected: "+strings.Join(extra, ", "))
	}
	if len(detail) == 0 {
		detail = append(detail, "column order differs")
	}

	msg := fmt.Sprintf("header mismatch in %s: expected [%s], got [%s] (%s)",
		where,
		strings.Join(e.Expected, ", "),
		strings.Join(e.Actual, ", "),
		strings.Join(detail, "; "),
	)
	if e.Reference != "" {
		msg += fmt.Sprintf("; reference header taken from %s", e.Reference)
	}
	return msg
}

// SheetNotFoundError is returned when a requested worksheet is missing.
type SheetNotFoundError struct {
	File      string
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in %s (available: %s)",
		e.Sheet, e.File, strings.Join(e.Available, ", "))
}

// DataValidationError describes one unusable field in one data row.
type DataValidationError struct {
	File string

	// Row is the 1-based line number in File; the header is row 1.
	Row int

	Field  string
	Value  string
	Reason string
}

func (e *DataValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s row %d: %s", e.File, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s row %d, field '%s': %s (value: '%s')",
		e.File, e.Row, e.Field, e.Reason, e.Value)
}

// WritePermissionError is returned when the output cannot be created or replaced.
type WritePermissionError struct {
	Path string
	Err  error
}

func (e *WritePermissionError) Error() string {
	return fmt.Sprintf("cannot write output %s: %v", e.Path, e.Err)
}

func (e *WritePermissionError) Unwrap() error { return e.Err }

// EmptyInputError is returned when no usable rows remain after validation.
type EmptyInputError struct {
	Files []string

	// Rejected is the number of rows dropped by the skip policy.
	Rejected int

	// Issues are the row problems that led to the rejections.
	Issues []*DataValidationError
}

// emptyInputIssueLimit caps the issues listed in an EmptyInputError message.
const emptyInputIssueLimit = 5

func (e *EmptyInputError) Error() string {
	msg := fmt.Sprintf("no usable rows in %d input file(s): %s",
		len(e.Files), strings.Join(e.Files, ", "))
	if e.Rejected > 0 {
		msg += fmt.Sprintf(" (%d row(s) rejected)", e.Rejected)
	}
	if len(e.Issues) > 0 {
		msg += "\n" + strings.TrimRight(FormatErrors(e.Issues, emptyInputIssueLimit), "\n")
	}
	return msg
}

// =============================================================================
// HEADER VALIDATION
// =============================================================================

// ValidateHeader checks that actual equals expected in name and order.
//
// PARAMETERS:
//   - file: The input the header came from (used in the error).
//   - expected: The required header.
//   - actual: The header read from the file, already cleaned.
//
// RETURNS:
//   - nil if the headers match, otherwise a *SchemaMismatchError.
func ValidateHeader(file string, expected, actual []string) error {
	if equalHeaders(expected, actual) {
		return nil
	}
	return &SchemaMismatchError{
		File:     file,
		Expected: append([]string(nil), expected...),
		Actual:   append([]string(nil), actual...),
	}
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// difference returns the names in a that are not in b, in a's order.
func difference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		seen[s] = true
	}
	var out []string
	for _, s := range a {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors renders a list of row issues for logs and error messages.
// At most limit entries are listed; limit <= 0 lists all of them.
func FormatErrors(errs []*DataValidationError, limit int) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d row issue(s):\n", len(errs)))

	shown := errs
	if limit > 0 && len(errs) > limit {
		shown = errs[:limit]
	}
	for i, e := range shown {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e.Error()))
	}
	if len(shown) < len(errs) {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(errs)-len(shown)))
	}

	return sb.String()
}
