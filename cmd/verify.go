package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/scope-cli/internal/classifier"
	"github.com/sells-group/scope-cli/internal/dataset"
)

// errArtifactsMissing is returned by verify when a pipeline output is absent.
var errArtifactsMissing = eris.New("verify: pipeline artifacts missing")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every pipeline artifact is present and usable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVerify(os.Stdout, artifactPaths{
			Metadata: cfg.Collect.MetadataPath,
			Dataset:  cfg.Train.DatasetPath,
			ModelDir: cfg.Train.ModelDir,
		})
	},
}

type artifactPaths struct {
	Metadata string
	Dataset  string
	ModelDir string
}

// runVerify reports on each artifact and fails if any is missing.
func runVerify(w io.Writer, p artifactPaths) error {
	ok := true
	check := func(name, path string) bool {
		if _, err := os.Stat(path); err != nil {
			_, _ = fmt.Fprintf(w, "MISSING  %s (%s)\n", name, path)
			ok = false
			return false
		}
		_, _ = fmt.Fprintf(w, "OK       %s (%s)\n", name, path)
		return true
	}

	check("metadata", p.Metadata)
	if check("dataset", p.Dataset) {
		rows, header, err := dataset.Read(p.Dataset)
		if err != nil {
			return err
		}
		formatSummary(w, header, dataset.Summarize(rows))
	}
	if check("model", filepath.Join(p.ModelDir, classifier.ModelFile)) {
		if _, err := classifier.Load(p.ModelDir); err != nil {
			return err
		}
	}
	check("trainer state", filepath.Join(p.ModelDir, classifier.StateFile))

	if !ok {
		return errArtifactsMissing
	}
	_, _ = fmt.Fprintln(w, "All artifacts present")
	return nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
