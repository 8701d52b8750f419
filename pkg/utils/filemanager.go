// =============================================================================
// Sales Report - File Management Utilities
// =============================================================================
//
// This module provides the file operations shared by both pipelines:
//   - Input existence checks
//   - Atomic output writes (temp file + rename in the destination directory)
//   - The optional rejected-rows log of the report pipeline
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sales-report/internal/validation"
)

// =============================================================================
// INPUT CHECKS
// =============================================================================

// RequireInputs checks every path exists and is a regular file, in order.
//
// RETURNS:
//   - *validation.FileNotFoundError for the first missing path.
//   - An error if a path is a directory or cannot be inspected.
func RequireInputs(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return &validation.FileNotFoundError{Path: path, Err: err}
		}
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("input %s is a directory, not a file", path)
		}
	}
	return nil
}

// =============================================================================
// ATOMIC OUTPUT
// =============================================================================

// TempPathFor returns a unique hidden sibling of path used while writing.
// Example: reports/sales.xlsx -> reports/.sales.xlsx.<uuid>.tmp
func TempPathFor(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))
}

// WriteFileAtomic writes the output through write and renames it into place.
//
// PARAMETERS:
//   - path: The destination. Its parent directories are created.
//   - write: Serialises the content into the temp file.
//
// RETURNS:
//   - *validation.WritePermissionError if any step fails. The temp file is
//     removed and an existing file at path is left untouched.
//
// GUARANTEES:
//   Readers of path see either the previous file or the complete new one.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	fail := func(e error) error {
		return &validation.WritePermissionError{Path: path, Err: e}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fail(fmt.Errorf("failed to create directory %s: %w", dir, err))
		}
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return fail(fmt.Errorf("output path is a directory"))
	}

	tmpPath := TempPathFor(path)
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fail(err)
	}

	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(file); err != nil {
		return fail(err)
	}
	if err := file.Sync(); err != nil {
		return fail(err)
	}
	if err := file.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fail(err)
	}

	return nil
}

// =============================================================================
// REJECTED ROWS LOG
// =============================================================================

// RejectedLogEntry is one row dropped or coerced by the report transformer.
type RejectedLogEntry struct {
	Action string // "skipped" or "coerced"
	Issue  *validation.DataValidationError
}

// WriteRejectedLog writes the entries to a plain text log at path.
//
// RETURNS:
//   - An error if writing fails. Nothing is written when entries is empty.
func WriteRejectedLog(entries []RejectedLogEntry, path string) error {
	if len(entries) == 0 {
		return nil
	}

	return WriteFileAtomic(path, func(w io.Writer) error {
		writer := bufio.NewWriter(w)

		fmt.Fprintf(writer, "Sales Report - Rejected Rows\n"+
			"Generated: %s\n"+
			"Total Issues: %d\n"+
			"================================================================================\n\n",
			time.Now().Format("2006-01-02 15:04:05"),
			len(entries))

		for i, entry := range entries {
			fmt.Fprintf(writer, "Issue #%d (%s)\n"+
				"  File:    %s\n"+
				"  Row:     %d\n",
				i+1, entry.Action, entry.Issue.File, entry.Issue.Row)
			if entry.Issue.Field != "" {
				fmt.Fprintf(writer, "  Field:   %s\n", entry.Issue.Field)
				fmt.Fprintf(writer, "  Value:   %s\n", entry.Issue.Value)
			}
			fmt.Fprintf(writer, "  Reason:  %s\n\n", entry.Issue.Reason)
		}

		writer.WriteString("================================================================================\n" +
			"End of Log\n")

		return writer.Flush()
	})
}
