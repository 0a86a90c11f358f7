package main

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/scope-cli/internal/classifier"
	"github.com/sells-group/scope-cli/internal/model"
)

var predictCmd = &cobra.Command{
	Use:   "predict [text]",
	Short: "Classify text with a trained checkpoint",
	Long:  "Classifies the text given as an argument, or each non-empty line of stdin, and prints one JSON object per input.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("model-dir")
		if !cmd.Flags().Changed("model-dir") {
			dir = cfg.Train.ModelDir
		}
		m, err := classifier.Load(dir)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return runPredict(os.Stdout, m, strings.NewReader(args[0]))
		}
		return runPredict(os.Stdout, m, os.Stdin)
	},
}

type prediction struct {
	Text        string      `json:"text"`
	Label       model.Label `json:"label"`
	Probability float64     `json:"probability"`
}

func runPredict(w io.Writer, m *classifier.Model, in io.Reader) error {
	enc := json.NewEncoder(w)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		label, p := m.Predict(text)
		if err := enc.Encode(prediction{Text: text, Label: label, Probability: p}); err != nil {
			return eris.Wrap(err, "predict: write")
		}
	}
	return eris.Wrap(sc.Err(), "predict: read input")
}

func init() {
	predictCmd.Flags().String("model-dir", "./model", "checkpoint directory")
	rootCmd.AddCommand(predictCmd)
}
