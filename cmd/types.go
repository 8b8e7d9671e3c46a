// =============================================================================
// Portfolio Consolidation - Types Command
// =============================================================================
//
// This file defines the 'types' command, which prints the built-in
// document-type registry.
//
// COMMAND USAGE:
//   consolidar types [--columns]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
)

// showColumns also prints the column mappings.
var showColumns bool

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the document types the consolidation recognizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Default()
		if err != nil {
			return err
		}
		printTypes(cmd.OutOrStdout(), reg, showColumns)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	typesCmd.Flags().BoolVar(&showColumns, "columns", false, "Also print the column mappings")
}

// printTypes prints the registry, the primary type first.
func printTypes(out io.Writer, reg *registry.Registry, columns bool) {
	for _, dt := range reg.Types() {
		primary := ""
		if dt.Primary {
			primary = " (primary)"
		}
		fmt.Fprintf(out, "%s%s [%s]\n", dt.Key, primary, dt.Strategy)
		if dt.Description != "" {
			fmt.Fprintf(out, "  %s\n", dt.Description)
		}
		for _, s := range dt.Sheets {
			sheet := s.Name
			if sheet == "" {
				sheet = "(first sheet)"
			}
			fmt.Fprintf(out, "  sheet %s: merge key %s, required %s\n", sheet, s.MergeKey, strings.Join(s.Required, ", "))
			if !columns {
				continue
			}
			if len(s.Names) > 0 {
				fmt.Fprintf(out, "    positional (skip %d): %s\n", s.SkipRows, strings.Join(s.Names, ", "))
				continue
			}
			for _, c := range s.Columns {
				fmt.Fprintf(out, "    %-24s -> %s\n", c.Source, c.Target)
			}
		}
	}
}
