package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scope-cli",
	Short: "Scope 1/2/3 emissions disclosure dataset pipeline",
	Long: `Collects annual report PDFs, labels Scope 1/2/3 disclosure excerpts, and
trains a disclosure classifier.

Stages run in order and exchange flat files, so each can be run alone:

  collect   annualreports.com -> data/pdfs, data/texts, data/pdf_metadata.csv
  label     data/pdf_metadata.csv -> dataset.csv
  train     dataset.csv + validation.csv -> model/

Flags override SCOPE_* environment variables, which override config.yaml
or the file named by --config.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.LoadFile(path)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyGlobalFlags(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.CommandPath()),
			zap.String("config_file", path),
			zap.String("store_driver", cfg.Store.Driver),
		)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// applyGlobalFlags copies explicitly set persistent flags over c.
func applyGlobalFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		c.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("store-driver") {
		c.Store.Driver, _ = flags.GetString("store-driver")
	}
	if flags.Changed("database-url") {
		c.Store.DatabaseURL, _ = flags.GetString("database-url")
	}
}

func addGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default ./config.yaml if present)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "json", "log format: json or console")
	pf.String("store-driver", "sqlite", "run ledger backend: sqlite or postgres")
	pf.String("database-url", "scope.db", "run ledger DSN or sqlite path")
}

func init() {
	addGlobalFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
