// =============================================================================
// Portfolio Consolidation - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a consolidation run:
//   - Input discovery (.xlsx, .xls, .csv extracts)
//   - Output file naming
//   - The per-run summary log (one CSV row per input file)
//
// Input files are never moved or modified. A run only reads them.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// InputExtensions are the file extensions picked up by discovery.
var InputExtensions = []string{".xlsx", ".xls", ".csv"}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the extracts in inputDir, sorted by name.
//
// PARAMETERS:
//   - inputDir: The directory to scan. Subdirectories are not descended.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
//
// Office lock files ("~$...") and hidden files are skipped.
func DiscoverInputFiles(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if IsInputFile(name) {
			files = append(files, filepath.Join(inputDir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsInputFile reports whether name has one of the input extensions.
func IsInputFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates the report file name.
//
// PARAMETERS:
//   - format: The name pattern, without extension.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - YYYYMMDD_HHMMSS
//               {date}      - YYYYMMDD
//   - extension: The extension to append, e.g. ".xlsx".
//   - now: The run time.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "consolidado_{date}"  extension: ".xlsx"
//   output: "consolidado_20250615.xlsx"
func GenerateOutputFileName(format, extension string, now time.Time) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.EqualFold(filepath.Ext(result), extension) {
		result += extension
	}
	return result
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// SummaryEntry is one row of the run summary log.
type SummaryEntry struct {
	RunID        string `csv:"run_id"`
	Timestamp    string `csv:"timestamp"`
	File         string `csv:"file"`
	DocumentType string `csv:"document_type"`
	Status       string `csv:"status"`
	Rows         int    `csv:"rows"`
	Message      string `csv:"message"`
}

// WriteSummaryLog writes the summary entries to path as CSV, replacing any
// previous file.
//
// RETURNS:
//   - An error if the file cannot be created or encoded.
func WriteSummaryLog(entries []SummaryEntry, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&entries, file); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

// ReadSummaryLog reads a summary log written by WriteSummaryLog.
func ReadSummaryLog(path string) ([]SummaryEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary file: %w", err)
	}
	defer file.Close()

	var entries []SummaryEntry
	if err := gocsv.UnmarshalFile(file, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse summary file: %w", err)
	}
	return entries, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
