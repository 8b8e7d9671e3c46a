// =============================================================================
// Portfolio Consolidation - Main Entry Point
// =============================================================================
//
// This is the main entry point for the consolidation CLI. It delegates
// command execution to the cmd package.
//
// USAGE:
//   consolidar consolidate   - Consolidate the input extracts into one report
//   consolidar classify      - Show the document type of each input file
//   consolidar types         - List the recognized document types
//   consolidar version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : loading, enrichment pipeline and report writing
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/portfolio-consolidation/cmd"
)

func main() {
	cmd.Execute()
}
