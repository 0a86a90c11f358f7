package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/config"
	"github.com/sells-group/scope-cli/internal/dataset"
	"github.com/sells-group/scope-cli/internal/labeler"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label Scope 1/2/3 excerpts from extracted report text",
	Long:  "Reads the collector metadata CSV, finds Scope 1/2/3 excerpts in each text file, labels them 1 for full disclosure or 0 for partial or future-only disclosure, and writes dataset.csv.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyLabelFlags(cmd, &cfg.Label)

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := labeler.New(cfg.Label, st).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "label")
		}

		if xlsxPath, _ := cmd.Flags().GetString("xlsx"); xlsxPath != "" {
			if err := dataset.WriteXLSX(xlsxPath, res.Rows); err != nil {
				return err
			}
			zap.L().Info("label: wrote spreadsheet", zap.String("path", xlsxPath))
		}

		s := res.Stats
		zap.L().Info("label complete",
			zap.String("run_id", res.RunID),
			zap.Int("rows", s.Rows),
			zap.Int("label_0", s.Label0),
			zap.Int("label_1", s.Label1),
			zap.Int("unique_companies", s.UniqueCompanies),
			zap.Strings("exchanges", s.Exchanges),
			zap.Int("missing_text", s.MissingText),
			zap.Int("generic", s.Generic),
		)
		return nil
	},
}

func applyLabelFlags(cmd *cobra.Command, c *config.LabelConfig) {
	f := cmd.Flags()
	if f.Changed("metadata") {
		c.MetadataPath, _ = f.GetString("metadata")
	}
	if f.Changed("out") {
		c.OutputPath, _ = f.GetString("out")
	}
	if f.Changed("per-report") {
		c.ExcerptsPerReport, _ = f.GetInt("per-report")
	}
}

func init() {
	labelCmd.Flags().String("metadata", "data/pdf_metadata.csv", "collector metadata CSV")
	labelCmd.Flags().String("out", "dataset.csv", "labeled dataset CSV")
	labelCmd.Flags().Int("per-report", 3, "maximum excerpts per report")
	labelCmd.Flags().String("xlsx", "", "also export the dataset as an .xlsx workbook")
	rootCmd.AddCommand(labelCmd)
}
