// =============================================================================
// Sales Report - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── reportCmd  (salesreport report)
//   ├── mergeCmd   (salesreport merge)
//   └── versionCmd (salesreport version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the optional YAML configuration (--config)
//   2. Initializes the global logger (--verbose forces debug level)
//   Subcommand flags then override the loaded values when they are set
//   explicitly on the command line.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-report/internal/config"
	"github.com/ginjaninja78/sales-report/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the optional configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the configuration loaded by the root command before a subcommand runs.
var cfg = config.Default()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "Sales Report - Build sales workbooks from CSV exports and merge workbooks",
	Long: `Sales Report turns sales CSV exports into an Excel report and merges
Excel workbooks that share the same layout.

Key Features:
  - Strict header validation (date,region,product,units,unit_price)
  - Exact decimal revenue, pivot by region and product, KPIs and a chart
  - Configurable handling of malformed rows and empty inputs
  - Atomic output: an existing report is never left half-written

Example Usage:
  salesreport report --inputs jan.csv feb.csv --out reports/sales_report.xlsx
  salesreport report jan.csv feb.csv --on-invalid skip
  salesreport merge --inputs a.xlsx b.xlsx --out merged.xlsx --add-source`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// Interrupts cancel the running pipeline between input files.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: optional YAML configuration. Without it, defaults apply.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to an optional YAML configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads the configuration file and sets up the global logger.
func initConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if verbose {
		loaded.Logging.Level = "debug"
	}

	if err := logging.Initialize(logging.Config{
		Level:  loaded.Logging.Level,
		Format: loaded.Logging.Format,
		Output: loaded.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg = loaded
	return nil
}
