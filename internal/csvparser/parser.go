// =============================================================================
// Sales Report - CSV Parser Module
// =============================================================================
//
// This module reads the sales CSV extracts. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Non UTF-8 encodings (ISO-8859-1, Windows-1252) and a leading UTF-8 BOM
//   - Header normalisation (trim + lower-case) before schema validation
//   - Line numbers for every data row, so errors can point at the input line
//
// The parser does not know the sales schema; header validation happens in the
// report loader so the same parser can read any CSV.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/sales-report/internal/config"
)

// ErrEmptyFile is returned when the file has no header row at all.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents a parsed CSV file.
type CSVData struct {
	// Headers contains the cleaned column headers.
	Headers []string

	// Rows contains the data rows in file order; blank lines are skipped.
	Rows [][]string

	// LineNumbers[i] is the 1-based line of Rows[i] in the source file.
	LineNumbers []int
}

// RowCount returns the number of data rows.
func (d *CSVData) RowCount() int {
	return len(d.Rows)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads a CSV file and returns its header and data rows.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - A pointer to the CSVData struct.
//   - ErrEmptyFile if the file has no rows, or an error if it cannot be read.
//
// PARSING PROCESS:
//   1. Open the file and wrap it in the configured decoder
//   2. Configure the CSV reader with the configured delimiter
//   3. Read the header row and clean it
//   4. Read the data rows, recording the line each one started on
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader, err := decodingReader(file, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	data := &CSVData{
		Headers: cleanHeaders(header),
	}

	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		// encoding/csv already drops fully empty lines; this catches ",,,,".
		if isRowEmpty(row) {
			continue
		}

		line, _ := csvReader.FieldPos(0)
		data.Rows = append(data.Rows, row)
		data.LineNumbers = append(data.LineNumbers, line)
	}

	return data, nil
}

// decodingReader wraps r so the CSV reader always sees UTF-8 without a BOM.
func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToUpper(strings.TrimSpace(encoding)) {
	case "", "UTF-8", "UTF8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "ISO-8859-1", "LATIN1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	delimiter := settings.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	comma, ok := config.DelimiterRune(delimiter)
	if !ok {
		return fmt.Errorf("unsupported delimiter: %q", settings.Delimiter)
	}
	reader.Comma = comma

	// Rows with the wrong number of fields are reported by the loader with
	// their line number, not rejected here.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	return nil
}

// cleanHeaders trims and lower-cases header names.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimPrefix(header, "\ufeff")
		cleaned[i] = strings.ToLower(strings.TrimSpace(header))
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
