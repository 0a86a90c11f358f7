package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/scope-cli/internal/labeler"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Report which extracted texts mention Scope 3 and how",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") {
			dir = cfg.Collect.TextDir
		}
		out, _ := cmd.Flags().GetString("out")

		findings, err := labeler.Diagnose(cmd.Context(), dir)
		if err != nil {
			return err
		}
		if err := labeler.WriteDiagnostics(out, findings); err != nil {
			return err
		}
		formatFindings(os.Stdout, findings)
		return nil
	},
}

// formatFindings prints the files that mention Scope 3 with their sample
// contexts, followed by a count line.
func formatFindings(w io.Writer, findings []labeler.Finding) {
	var hits int
	for _, f := range findings {
		if !f.HasScope3 {
			continue
		}
		hits++
		_, _ = fmt.Fprintf(w, "%s: %d matches (%s)\n", f.File, f.Count, f.Record()[3])
		for _, s := range f.Samples {
			_, _ = fmt.Fprintf(w, "  [%s] ...%s...\n", s.Pattern, s.Context)
		}
	}
	_, _ = fmt.Fprintf(w, "%d of %d files mention Scope 3\n", hits, len(findings))
}

func init() {
	diagnoseCmd.Flags().String("dir", "data/texts", "directory of extracted .txt files")
	diagnoseCmd.Flags().String("out", "data/scope3_diagnostic.csv", "diagnostics CSV path")
	rootCmd.AddCommand(diagnoseCmd)
}
