package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/collector"
	"github.com/sells-group/scope-cli/internal/config"
	"github.com/sells-group/scope-cli/internal/fetcher"
	"github.com/sells-group/scope-cli/internal/pdftext"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Download annual report PDFs and extract their text",
	Long:  "Discovers companies on the annual report directory (topping up from the fallback list), downloads 2020-2025 annual reports, extracts text and writes the metadata CSV.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyCollectFlags(cmd, &cfg.Collect)

		fallback, err := collector.LoadFallback(cfg.Collect.FallbackFile)
		if err != nil {
			return err
		}
		ext, err := pdftext.NewExtractor(cfg.Extract)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		c, err := collector.New(cfg.Collect, newFetcher(cfg.Collect), ext, st, fallback)
		if err != nil {
			return err
		}
		res, err := c.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "collect")
		}

		zap.L().Info("collect complete",
			zap.String("run_id", res.RunID),
			zap.Int("reports", len(res.Reports)),
			zap.Int("unique_companies", res.Stats.UniqueCompanies),
			zap.Strings("exchanges", res.Stats.Exchanges),
			zap.Ints("years", res.Stats.Years),
			zap.String("metadata", cfg.Collect.MetadataPath),
		)
		return nil
	},
}

func newFetcher(c config.CollectConfig) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.UserAgent,
		Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
		MaxRetries: c.MaxRetries,
		RatePerSec: c.RatePerSec,
		Burst:      1,
	})
}

func applyCollectFlags(cmd *cobra.Command, c *config.CollectConfig) {
	f := cmd.Flags()
	if f.Changed("min-companies") {
		c.MinCompanies, _ = f.GetInt("min-companies")
	}
	if f.Changed("concurrency") {
		c.Concurrency, _ = f.GetInt("concurrency")
	}
	if f.Changed("fallback") {
		c.FallbackFile, _ = f.GetString("fallback")
	}
	if f.Changed("pdf-dir") {
		c.PDFDir, _ = f.GetString("pdf-dir")
	}
	if f.Changed("text-dir") {
		c.TextDir, _ = f.GetString("text-dir")
	}
	if f.Changed("out") {
		c.MetadataPath, _ = f.GetString("out")
	}
}

func init() {
	collectCmd.Flags().Int("min-companies", 50, "number of companies to collect")
	collectCmd.Flags().Int("concurrency", 4, "companies fetched in parallel")
	collectCmd.Flags().String("fallback", "", "YAML fallback company list (default embedded)")
	collectCmd.Flags().String("pdf-dir", "data/pdfs", "directory for downloaded PDFs")
	collectCmd.Flags().String("text-dir", "data/texts", "directory for extracted text")
	collectCmd.Flags().String("out", "data/pdf_metadata.csv", "metadata CSV path")
	rootCmd.AddCommand(collectCmd)
}
