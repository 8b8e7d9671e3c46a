// =============================================================================
// Portfolio Consolidation - Configuration
// =============================================================================
//
// This module handles the run configuration of the consolidation CLI.
//
// CONFIGURATION FILE (config.yaml):
//   Read through viper from an explicit path. Environment variables are not
//   consulted: a run is fully described by the file plus command-line flags.
//
//   input_dir: "./input"
//   input_files: []                 # explicit list; overrides input_dir
//   output_dir: "./output"
//   output_name_format: "consolidado_{date}_{uuid}"
//   output_format: "xlsx"           # xlsx | csv
//   sheet_name: "Consolidado"
//   log_level: "info"
//   summary_log: "./output/run_summary.csv"
//   reference_date: ""              # dd/mm/yyyy, defaults to today
//   date_range:
//     start: ""                     # dd/mm/yyyy
//     end: ""
//   column_order: []                # defaults to the canonical order
//   csv:
//     delimiter: ","
//     encoding: "UTF-8"             # UTF-8 | ISO-8859-1 | WINDOWS-1252
//
// The document-type registry is not part of this file. It ships embedded in
// the binary (see internal/registry).
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DateLayout is the day-first layout used for every date in the config.
const DateLayout = "02/01/2006"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config is the complete run configuration.
type Config struct {
	// InputDir is scanned for .xlsx, .xls and .csv extracts when InputFiles
	// is empty.
	InputDir string `yaml:"input_dir" mapstructure:"input_dir"`

	// InputFiles is an explicit list of input paths.
	InputFiles []string `yaml:"input_files" mapstructure:"input_files"`

	// OutputDir is where the consolidated report is written.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// OutputNameFormat is the report file name without extension.
	// Supported placeholders:
	//   - {uuid}: a new UUID v4
	//   - {timestamp}: YYYYMMDD_HHMMSS
	//   - {date}: YYYYMMDD
	OutputNameFormat string `yaml:"output_name_format" mapstructure:"output_name_format"`

	// OutputFormat is "xlsx" or "csv".
	OutputFormat string `yaml:"output_format" mapstructure:"output_format"`

	// SheetName is the worksheet name of an xlsx report.
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// SummaryLog, when set, receives one CSV row per input file.
	SummaryLog string `yaml:"summary_log" mapstructure:"summary_log"`

	// ReferenceDate overrides "today" for the arrears computation.
	ReferenceDate string `yaml:"reference_date" mapstructure:"reference_date"`

	// DateRange optionally restricts the report by current installment date.
	DateRange DateRange `yaml:"date_range" mapstructure:"date_range"`

	// ColumnOrder overrides the canonical report column order.
	ColumnOrder []string `yaml:"column_order" mapstructure:"column_order"`

	// CSV controls reading of .csv extracts and writing of csv reports.
	CSV CSVSettings `yaml:"csv" mapstructure:"csv"`
}

// DateRange is an inclusive day range in dd/mm/yyyy.
type DateRange struct {
	Start string `yaml:"start" mapstructure:"start"`
	End   string `yaml:"end" mapstructure:"end"`
}

// CSVSettings contains CSV dialect settings.
type CSVSettings struct {
	// Delimiter is the field separator. Accepts ",", ";", "|", "tab".
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`

	// Encoding is the character encoding of the files.
	// Supported: UTF-8, ISO-8859-1 (LATIN1), WINDOWS-1252 (CP1252).
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration file at configPath.
// A missing file is not an error when allowMissing is set: defaults are used.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, allowMissing bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if !(allowMissing && isNotExist(configPath)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes, defaults and validates a configuration held by v.
// Flags bound to v take precedence over file values.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func isNotExist(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// applyDefaults sets default values for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "consolidado_{date}_{uuid}"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "xlsx"
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	if cfg.SheetName == "" {
		cfg.SheetName = "Consolidado"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "UTF-8"
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("output_format must be xlsx or csv, got '%s'", c.OutputFormat)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got '%s'", c.LogLevel)
	}

	if _, err := c.Reference(); err != nil {
		return err
	}
	start, end, err := c.Range()
	if err != nil {
		return err
	}
	if (start == nil) != (end == nil) {
		return fmt.Errorf("date_range needs both start and end")
	}
	if start != nil && end.Before(*start) {
		return fmt.Errorf("date_range end %s is before start %s", c.DateRange.End, c.DateRange.Start)
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Reference returns the configured reference date, or nil for "today".
func (c *Config) Reference() (*time.Time, error) {
	return parseOptionalDate("reference_date", c.ReferenceDate)
}

// Range returns the parsed date range bounds; both nil when not set.
func (c *Config) Range() (*time.Time, *time.Time, error) {
	start, err := parseOptionalDate("date_range.start", c.DateRange.Start)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseOptionalDate("date_range.end", c.DateRange.End)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func parseOptionalDate(key, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%s must be dd/mm/yyyy, got '%s'", key, value)
	}
	return &t, nil
}
