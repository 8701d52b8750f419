// =============================================================================
// Sales Report - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Sales Report CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   salesreport report   - Build the sales report workbook from CSV files
//   salesreport merge    - Merge workbooks with identical headers
//   salesreport version  - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Pipelines, parsers, writers, configuration, logging
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-report/cmd"
)

func main() {
	cmd.Execute()
}
