// =============================================================================
// Portfolio Consolidation - Classify Command
// =============================================================================
//
// This file defines the 'classify' command: it shows which document type
// each input file would be loaded as, without reading the files.
//
// COMMAND USAGE:
//   consolidar classify [dir]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
	"github.com/ginjaninja78/portfolio-consolidation/pkg/utils"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [dir]",
	Short: "Show the document type of each input file",
	Long: `The classify command runs the file-name classifier over a directory (the
configured input directory by default) and prints the document type each
file would be loaded as. Files are not opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, sync, err := setup()
		if err != nil {
			return err
		}
		defer sync()

		dir := cfg.InputDir
		if len(args) == 1 {
			dir = args[0]
		}
		reg, err := registry.Default()
		if err != nil {
			return err
		}
		files, err := utils.DiscoverInputFiles(dir)
		if err != nil {
			return err
		}
		return printClassification(cmd.OutOrStdout(), reg, files)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

// printClassification prints one line per file and a count of the files no
// type matched.
func printClassification(out io.Writer, reg *registry.Registry, files []string) error {
	unmatched := 0
	for _, f := range files {
		name := filepath.Base(f)
		if dt, ok := reg.Classify(name); ok {
			fmt.Fprintf(out, "%-48s %s\n", name, dt.Key)
		} else {
			unmatched++
			fmt.Fprintf(out, "%-48s (unclassified)\n", name)
		}
	}
	fmt.Fprintf(out, "\n%d file(s), %d unclassified\n", len(files), unmatched)
	return nil
}
