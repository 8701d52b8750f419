package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/csvparser"
	"github.com/ginjaninja78/sales-report/internal/logging"
	"github.com/ginjaninja78/sales-report/internal/types"
	"github.com/ginjaninja78/sales-report/internal/validation"
	"github.com/ginjaninja78/sales-report/pkg/utils"
)

// ErrNoInputs is returned when Load is called without any path.
var ErrNoInputs = errors.New("no input files given")

// Loader reads sales CSV files into one Table.
type Loader struct {
	settings config.CSVSettings
	logger   *zap.Logger
}

// NewLoader creates a Loader for the given CSV dialect.
func NewLoader(settings config.CSVSettings, logger *zap.Logger) *Loader {
	return &Loader{
		settings: settings,
		logger:   logging.OrNop(logger),
	}
}

// Load reads every path in order, validates its header against
// types.SalesHeader and concatenates the rows. Rows are not deduplicated.
//
// RETURNS:
//   - The unified table.
//   - *validation.FileNotFoundError for a missing path,
//     *validation.SchemaMismatchError for a header that does not match,
//     or the read error of the failing file.
func (l *Loader) Load(ctx context.Context, paths []string) (*types.Table, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	// Fail on a missing input before reading anything.
	if err := utils.RequireInputs(paths); err != nil {
		return nil, err
	}

	table := &types.Table{
		Header: append([]string(nil), types.SalesHeader...),
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := csvparser.Parse(path, l.settings)
		if errors.Is(err, csvparser.ErrEmptyFile) {
			return nil, &validation.SchemaMismatchError{
				File:     path,
				Expected: append([]string(nil), types.SalesHeader...),
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if err := validation.ValidateHeader(path, types.SalesHeader, data.Headers); err != nil {
			return nil, err
		}

		for i, row := range data.Rows {
			record := types.Record{
				SourceFile: path,
				RowNumber:  data.LineNumbers[i],
				Raw:        row,
			}
			if len(row) == types.FieldCount {
				record.Fields = row
			}
			table.Records = append(table.Records, record)
		}

		table.Files = append(table.Files, path)

		l.logger.Debug("loaded input",
			zap.String("file", path),
			zap.Int("rows", data.RowCount()),
		)
	}

	return table, nil
}
