// =============================================================================
// Portfolio Consolidation - Consolidate Command
// =============================================================================
//
// This file defines the 'consolidate' command, which runs one consolidation
// and writes the report.
//
// COMMAND USAGE:
//   consolidar consolidate [files...] [flags]
//
// FLAGS:
//   --input-dir   : Directory scanned for extracts (when no files are given)
//   --output-dir  : Directory the report is written to
//   --start/--end : Optional dd/mm/yyyy range on the current installment date
//   --format      : xlsx or csv
//   --dry-run     : Run the pipeline without writing the report
//
// PROCESSING PIPELINE:
//   1. Load the configuration (file, then flags)
//   2. Resolve the input files
//   3. Run the pipeline
//   4. Write the summary log, when configured (on failure too)
//   5. Write the report (never on a fatal error)
//   6. Print the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/portfolio-consolidation/internal/callcenter"
	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/loader"
	"github.com/ginjaninja78/portfolio-consolidation/internal/logging"
	"github.com/ginjaninja78/portfolio-consolidation/internal/pipeline"
	"github.com/ginjaninja78/portfolio-consolidation/internal/reportwriter"
	"github.com/ginjaninja78/portfolio-consolidation/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the pipeline without writing the report.
var dryRun bool

// =============================================================================
// CONSOLIDATE COMMAND DEFINITION
// =============================================================================

var consolidateCmd = &cobra.Command{
	Use:   "consolidate [files...]",
	Short: "Consolidate the credit extracts into one report",
	Long: `The consolidate command classifies and loads every input extract, joins the
secondary sources onto the primary credit ledger, computes the derived
columns and writes the consolidated report.

Input files are the arguments when given, otherwise the input_files list of
the configuration, otherwise every .xlsx, .xls and .csv file of the input
directory.

A missing ledger, a missing required ledger column or a failed ledger join
aborts the run and no report is written. Any other problem is logged as a
warning and the run continues.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsolidate(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(consolidateCmd)

	flags := consolidateCmd.Flags()
	flags.String("input-dir", "", "Directory scanned for input extracts")
	flags.String("output-dir", "", "Directory the report is written to")
	flags.String("start", "", "First current installment date to keep (dd/mm/yyyy)")
	flags.String("end", "", "Last current installment date to keep (dd/mm/yyyy)")
	flags.String("format", "", "Report format: xlsx or csv")
	flags.BoolVar(&dryRun, "dry-run", false, "Run the pipeline without writing the report")

	bindFlag(consolidateCmd, "input_dir", "input-dir")
	bindFlag(consolidateCmd, "output_dir", "output-dir")
	bindFlag(consolidateCmd, "date_range.start", "start")
	bindFlag(consolidateCmd, "date_range.end", "end")
	bindFlag(consolidateCmd, "output_format", "format")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConsolidate is the main function of the consolidate command.
func runConsolidate(ctx context.Context, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, logger, sync, err := setup()
	if err != nil {
		return err
	}
	defer sync()

	now := time.Now()
	reference, _ := cfg.Reference()
	start, end, _ := cfg.Range()

	// =========================================================================
	// STEP 2: RESOLVE INPUT FILES
	// =========================================================================

	paths, err := inputFiles(cfg, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files found in %s", cfg.InputDir)
	}
	logger.Info("Found %d input file(s)", len(paths))

	// =========================================================================
	// STEP 3: RUN THE PIPELINE
	// =========================================================================

	opts := pipeline.Options{
		Logger:      logger,
		Start:       start,
		End:         end,
		ColumnOrder: cfg.ColumnOrder,
		CSV:         cfg.CSV,
	}
	if reference != nil {
		opts.Now = *reference
	}

	result, report, runErr := pipeline.Run(ctx, paths, opts)

	if report != nil && cfg.SummaryLog != "" {
		if err := utils.WriteSummaryLog(summaryEntries(report, now), cfg.SummaryLog); err != nil {
			logger.Warn("Summary log not written: %v", err)
		} else {
			logger.Info("Summary log written to %s", cfg.SummaryLog)
		}
	}

	if runErr != nil {
		return fmt.Errorf("consolidation failed: %w", runErr)
	}

	// =========================================================================
	// STEP 4: WRITE THE REPORT
	// =========================================================================

	outputPath := ""
	if !dryRun {
		format, err := reportwriter.ParseFormat(cfg.OutputFormat)
		if err != nil {
			return err
		}
		name := utils.GenerateOutputFileName(cfg.OutputNameFormat, format.Extension(), now)
		outputPath, err = reportwriter.Write(result, cfg.OutputDir, name, reportwriter.Options{
			Format:    format,
			SheetName: cfg.SheetName,
			CSV:       cfg.CSV,
		})
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	printSummary(out, report, outputPath, logger)
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// inputFiles resolves the input paths: arguments, then the configured list,
// then the input directory.
func inputFiles(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.InputFiles) > 0 {
		return cfg.InputFiles, nil
	}
	return utils.DiscoverInputFiles(cfg.InputDir)
}

// summaryEntries converts the per-file outcomes into summary log rows.
func summaryEntries(report *pipeline.Report, now time.Time) []utils.SummaryEntry {
	stamp := now.Format("2006-01-02 15:04:05")
	entries := make([]utils.SummaryEntry, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		entries = append(entries, utils.SummaryEntry{
			RunID:        report.RunID,
			Timestamp:    stamp,
			File:         filepath.Base(o.File),
			DocumentType: o.DocumentType,
			Status:       o.Status,
			Rows:         o.Rows,
			Message:      o.Message,
		})
	}
	return entries
}

// printSummary prints the run summary.
func printSummary(out io.Writer, report *pipeline.Report, outputPath string, logger logging.Logger) {
	fmt.Fprintln(out, "=== Consolidation Complete ===")
	fmt.Fprintf(out, "Run ID:          %s\n", report.RunID)
	fmt.Fprintf(out, "Input files:     %d\n", len(report.Outcomes))
	for _, o := range report.Outcomes {
		mark := "✓"
		if o.Status != loader.StatusLoaded {
			mark = "✗"
		}
		label := o.DocumentType
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(out, "  %s %-40s %-24s %6d  %s\n", mark, filepath.Base(o.File), label, o.Rows, o.Message)
	}
	fmt.Fprintf(out, "Ledger rows:     %d\n", report.LedgerRows)
	fmt.Fprintf(out, "Report rows:     %d\n", report.Rows)

	buckets := make([]callcenter.Bucket, 0, len(report.Buckets))
	for b := range report.Buckets {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	for _, b := range buckets {
		fmt.Fprintf(out, "  %-20s %d\n", b, report.Buckets[b])
	}

	if len(report.Absent) > 0 {
		fmt.Fprintf(out, "Absent sources:  %v\n", report.Absent)
	}
	fmt.Fprintf(out, "Warnings:        %d\n", len(report.Warnings))
	fmt.Fprintf(out, "Time elapsed:    %s\n", report.Duration.Round(time.Millisecond))

	if outputPath == "" {
		fmt.Fprintln(out, "Dry run: no report written.")
		return
	}
	fmt.Fprintf(out, "Report:          %s\n", outputPath)
	logger.Info("Report written to %s", outputPath)
}
