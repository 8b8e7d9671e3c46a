// =============================================================================
// Portfolio Consolidation - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (consolidar)
//   ├── consolidateCmd (consolidar consolidate)
//   ├── classifyCmd    (consolidar classify)
//   ├── typesCmd       (consolidar types)
//   └── versionCmd     (consolidar version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose) and the
//   viper instance every command reads its settings from. Command flags are
//   bound onto the same instance, so a flag overrides the file value.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/logging"
	"github.com/ginjaninja78/portfolio-consolidation/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// settings holds the configuration file plus the bound command flags.
var settings = viper.New()

// configErr records a configuration file that exists but cannot be read.
var configErr error

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "consolidar",
	Short: "Portfolio consolidation - merge credit extracts into one report",
	Long: `consolidar merges the credit-portfolio extracts of ARPESOD and FINANSUEÑOS
into a single consolidated collections report.

Every input file is classified by its name against the built-in document-type
registry, loaded, validated and joined onto the primary credit ledger (R91).
Secondary extracts are optional: when one is missing its columns take their
default values.

Example Usage:
  consolidar consolidate                          # Consolidate the input directory
  consolidar consolidate --start 01/06/2025 --end 30/06/2025
  consolidar consolidate --config ./my.yaml --format csv
  consolidar classify ./input                     # Show how files would be typed
  consolidar types                                # List the document types`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// A failing command prints one line to stderr and exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initConfig reads the configuration file into settings.
//
// The default config.yaml may be absent: defaults apply. A file named with
// --config must exist.
func initConfig() {
	settings.SetConfigType("yaml")
	settings.SetConfigFile(cfgFile)

	if err := settings.ReadInConfig(); err != nil {
		explicit := rootCmd.PersistentFlags().Changed("config")
		if _, statErr := os.Stat(cfgFile); explicit || !os.IsNotExist(statErr) {
			configErr = fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}
}

// setup decodes the configuration and builds the logger.
//
// RETURNS:
//   - The validated configuration.
//   - The logger and its sync function.
//   - An error if the configuration is unusable.
func setup() (*config.Config, *logging.ZapLogger, func(), error) {
	if configErr != nil {
		return nil, nil, nil, configErr
	}
	cfg, err := config.FromViper(settings)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, sync, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return nil, nil, nil, err
	}
	if used := settings.ConfigFileUsed(); utils.FileExists(used) {
		logger.Debug("Using config file %s", used)
	}
	return cfg, logger, sync, nil
}

// bindFlag binds a command flag to a configuration key.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := settings.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}
