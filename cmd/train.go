package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/classifier"
	"github.com/sells-group/scope-cli/internal/config"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the disclosure classifier and print a JSON summary",
	Long:  "Trains on dataset.csv, evaluates on the validation CSV after every epoch, keeps the best checkpoint in the model directory, and prints one JSON summary line to stdout.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyTrainFlags(cmd, &cfg.Train)

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := classifier.NewTrainer(cfg.Train, st).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "train")
		}
		zap.L().Info("train complete",
			zap.String("run_id", res.RunID),
			zap.Bool("checkpoint_saved", res.Saved),
			zap.Int("best_epoch", res.State.BestEpoch),
			zap.Float64("best_f1", res.State.BestF1),
		)
		return printSummary(os.Stdout, res.Summary)
	},
}

// printSummary writes s as a single JSON line.
func printSummary(w io.Writer, s classifier.Summary) error {
	return json.NewEncoder(w).Encode(s)
}

func applyTrainFlags(cmd *cobra.Command, c *config.TrainConfig) {
	f := cmd.Flags()
	if f.Changed("dataset") {
		c.DatasetPath, _ = f.GetString("dataset")
	}
	if f.Changed("validation") {
		c.ValidationPath, _ = f.GetString("validation")
	}
	if f.Changed("model-dir") {
		c.ModelDir, _ = f.GetString("model-dir")
	}
	if f.Changed("base-model") {
		c.BaseModel, _ = f.GetString("base-model")
	}
	if f.Changed("epochs") {
		c.Epochs, _ = f.GetInt("epochs")
	}
	if f.Changed("batch-size") {
		c.BatchSize, _ = f.GetInt("batch-size")
	}
	if f.Changed("learning-rate") {
		c.LearningRate, _ = f.GetFloat64("learning-rate")
	}
	if f.Changed("seed") {
		c.Seed, _ = f.GetInt64("seed")
	}
}

func init() {
	trainCmd.Flags().String("dataset", "dataset.csv", "training dataset CSV")
	trainCmd.Flags().String("validation", "", "validation dataset CSV (required)")
	trainCmd.Flags().String("model-dir", "./model", "checkpoint output directory")
	trainCmd.Flags().String("base-model", "", "checkpoint to warm-start from")
	trainCmd.Flags().Int("epochs", 3, "training epochs")
	trainCmd.Flags().Int("batch-size", 16, "mini-batch size")
	trainCmd.Flags().Float64("learning-rate", 0.05, "peak learning rate")
	trainCmd.Flags().Int64("seed", 42, "shuffle seed")
	rootCmd.AddCommand(trainCmd)
}
