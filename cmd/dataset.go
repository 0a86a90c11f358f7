package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/dataset"
	"github.com/sells-group/scope-cli/internal/model"
)

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Append curated Scope 3 reporting examples to a dataset",
	Long: `Append curated Scope 3 reporting examples to a dataset.

By default the input is left untouched. Curated examples already present in the input
are not added twice. When the input does not exist the curated examples are
written on their own, to scope3_examples.csv unless --out is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		if !cmd.Flags().Changed("out") {
			if _, err := os.Stat(in); os.IsNotExist(err) {
				out = examplesOnlyPath
			}
		}
		return runAugment(in, out)
	},
}

const examplesOnlyPath = "scope3_examples.csv"

func runAugment(in, out string) error {
	var rows []model.DatasetRow
	if _, err := os.Stat(in); os.IsNotExist(err) {
		zap.L().Warn("augment: input dataset not found, writing curated examples only",
			zap.String("in", in),
		)
	} else if rows, _, err = dataset.Read(in); err != nil {
		return err
	}
	before := dataset.Summarize(rows)
	rows = dataset.Augment(rows)
	if err := dataset.Write(out, rows); err != nil {
		return err
	}
	after := dataset.Summarize(rows)
	zap.L().Info("augment complete",
		zap.String("path", out),
		zap.Int("added", after.Rows-before.Rows),
		zap.Int("label_0", after.Label0),
		zap.Int("label_1", after.Label1),
	)
	return nil
}

var validationCmd = &cobra.Command{
	Use:   "validation",
	Short: "Generate a synthetic validation dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, _ := cmd.Flags().GetInt("rows")
		seed, _ := cmd.Flags().GetUint64("seed")
		out, _ := cmd.Flags().GetString("out")
		if n <= 0 {
			return eris.New("validation: --rows must be positive")
		}
		rows := dataset.GenerateValidation(n, seed)
		if err := dataset.Write(out, rows); err != nil {
			return err
		}
		s := dataset.Summarize(rows)
		zap.L().Info("validation dataset written",
			zap.String("path", out),
			zap.Int("rows", s.Rows),
			zap.Int("label_0", s.Label0),
			zap.Int("label_1", s.Label1),
			zap.Strings("exchanges", s.Exchanges),
		)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [dataset.csv]",
	Short: "Check a dataset against the training requirements",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "dataset.csv"
		if len(args) == 1 {
			path = args[0]
		}
		if err := runValidate(os.Stdout, path); err != nil {
			return err
		}
		if xlsxPath, _ := cmd.Flags().GetString("xlsx"); xlsxPath != "" {
			rows, _, err := dataset.Read(path)
			if err != nil {
				return err
			}
			return dataset.WriteXLSX(xlsxPath, rows)
		}
		return nil
	},
}

// runValidate prints a dataset report to w and returns dataset.ErrInvalid
// when the dataset cannot be used for training.
func runValidate(w io.Writer, path string) error {
	rows, header, err := dataset.Read(path)
	if err != nil {
		return err
	}
	s := dataset.Summarize(rows)
	formatSummary(w, header, s)

	warnings, err := dataset.Validate(rows, header)
	for _, msg := range warnings {
		_, _ = fmt.Fprintf(w, "WARNING: %s\n", msg)
	}
	if err != nil {
		_, _ = fmt.Fprintf(w, "INVALID: %v\n", err)
		return err
	}
	_, _ = fmt.Fprintln(w, "OK: ready for training")
	return nil
}

func formatSummary(out io.Writer, header []string, s dataset.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Rows:\t%d\n", s.Rows)
	if header != nil {
		_, _ = fmt.Fprintf(w, "Columns:\t%s\n", strings.Join(header, ","))
	}
	_, _ = fmt.Fprintf(w, "Label 0:\t%d\n", s.Label0)
	_, _ = fmt.Fprintf(w, "Label 1:\t%d\n", s.Label1)
	_, _ = fmt.Fprintf(w, "Excerpt length:\t%d-%d chars\n", s.MinExcerpt, s.MaxExcerpt)
	_, _ = fmt.Fprintf(w, "Unique companies:\t%d\n", s.UniqueCompanies)
	_, _ = fmt.Fprintf(w, "Exchanges:\t%s\n", strings.Join(s.Exchanges, ", "))
	_, _ = fmt.Fprintf(w, "Years:\t%s\n", joinInts(s.Years))
	_ = w.Flush()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}

func init() {
	augmentCmd.Flags().String("in", "dataset.csv", "dataset to augment")
	augmentCmd.Flags().String("out", "dataset_augmented.csv", "output CSV path")

	validationCmd.Flags().Int("rows", 50, "number of rows to generate")
	validationCmd.Flags().Uint64("seed", 42, "generator seed")
	validationCmd.Flags().String("out", "validation.csv", "output CSV path")

	validateCmd.Flags().String("xlsx", "", "also export the dataset as an .xlsx workbook")

	rootCmd.AddCommand(augmentCmd)
	rootCmd.AddCommand(validationCmd)
	rootCmd.AddCommand(validateCmd)
}
