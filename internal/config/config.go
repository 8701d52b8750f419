// =============================================================================
// Sales Report - Configuration Module
// =============================================================================
//
// This module handles loading the optional YAML configuration file. The file
// tunes the parts of the pipelines that are policy rather than contract:
//   - What to do with malformed rows and with an empty input set
//   - CSV dialect (delimiter, encoding)
//   - Merge defaults (sheet to read, source column)
//   - Logging
//
// The sheet names, the sales header and the number formats are NOT
// configurable; they are part of the output contract.
//
// EXAMPLE (salesreport.yaml):
//
//   report:
//     invalid_rows: skip
//     empty_input: write
//     include_source: true
//   csv_settings:
//     delimiter: ";"
//     encoding: ISO-8859-1
//   merge:
//     sheet: Sheet1
//   logging:
//     level: debug
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// POLICIES
// =============================================================================

// Invalid-row policies for the report transformer.
const (
	// InvalidRowsAbort fails the run on the first malformed row.
	InvalidRowsAbort = "abort"

	// InvalidRowsSkip drops malformed rows and reports how many were dropped.
	InvalidRowsSkip = "skip"

	// InvalidRowsZero coerces bad units/unit_price values to zero with a warning.
	InvalidRowsZero = "zero"
)

// Empty-input policies for the report writer.
const (
	EmptyInputAbort = "abort"
	EmptyInputWrite = "write"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole application configuration.
type Config struct {
	Report      ReportConfig  `yaml:"report"`
	Merge       MergeConfig   `yaml:"merge"`
	CSVSettings CSVSettings   `yaml:"csv_settings"`
	Logging     LoggingConfig `yaml:"logging"`
}

// ReportConfig tunes the report pipeline.
type ReportConfig struct {
	// InvalidRows is the malformed-row policy: abort, skip or zero.
	// Default: "abort"
	InvalidRows string `yaml:"invalid_rows" validate:"oneof=abort skip zero"`

	// EmptyInput decides what happens when no usable rows remain:
	// abort (EmptyInputError) or write (empty but valid report).
	// Default: "abort"
	EmptyInput string `yaml:"empty_input" validate:"oneof=abort write"`

	// IncludeSource adds a source_file column to the Transactions sheet.
	IncludeSource bool `yaml:"include_source"`

	// RejectedLog, when set, receives a text log of rows dropped or coerced.
	RejectedLog string `yaml:"rejected_log"`
}

// MergeConfig tunes the merge pipeline.
type MergeConfig struct {
	// Sheet is the worksheet to read from every input.
	// Empty means the first sheet of each workbook.
	Sheet string `yaml:"sheet"`

	// AddSource appends a source_file column to the merged sheet.
	AddSource bool `yaml:"add_source"`
}

// CSVSettings contains settings for parsing the sales CSV files.
type CSVSettings struct {
	// Delimiter separates fields. Accepts ",", ";", "|", "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter" validate:"csvdelim"`

	// Encoding of the input files.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" validate:"oneof=UTF-8 ISO-8859-1 Windows-1252"`
}

// LoggingConfig mirrors logging.Config so the logging package stays free of yaml tags.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
	Output string `yaml:"output" validate:"required"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
//
// PARAMETERS:
//   - path: The YAML file. An empty path returns Default().
//
// RETURNS:
//   - The configuration with defaults applied and validated.
//   - An error if the file cannot be read, parsed or is invalid.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Report.InvalidRows == "" {
		cfg.Report.InvalidRows = InvalidRowsAbort
	}
	if cfg.Report.EmptyInput == "" {
		cfg.Report.EmptyInput = EmptyInputAbort
	}
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.Encoding == "" {
		cfg.CSVSettings.Encoding = "UTF-8"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("csvdelim", func(fl validator.FieldLevel) bool {
		_, ok := DelimiterRune(fl.Field().String())
		return ok
	})

	// Report yaml keys in messages, since that is what the user edits.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// DelimiterRune maps a configured delimiter to the rune encoding/csv expects.
func DelimiterRune(delimiter string) (rune, bool) {
	switch delimiter {
	case ",":
		return ',', true
	case ";", "semicolon":
		return ';', true
	case "|", "pipe":
		return '|', true
	case "tab", "\\t", "\t":
		return '\t', true
	}
	return 0, false
}

// Validate checks every policy and setting against its allowed values.
// Call it again after flags have overridden file values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "csvdelim":
			msgs = append(msgs, fmt.Sprintf("%s: %q is not a supported delimiter (use \",\", \";\", \"|\" or \"tab\")",
				fe.Namespace(), fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: %q is not one of [%s]",
				fe.Namespace(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
