// Package labeler slices report text into Scope 1/2/3 excerpts and labels
// each by whether it discloses Scope 3 emissions.
package labeler

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/config"
	"github.com/sells-group/scope-cli/internal/dataset"
	"github.com/sells-group/scope-cli/internal/fetcher"
	"github.com/sells-group/scope-cli/internal/model"
	"github.com/sells-group/scope-cli/internal/store"
)

// ErrNoExcerpts is returned when no report produced an excerpt.
var ErrNoExcerpts = eris.New("labeler: no excerpts created")

var metadataRequired = []string{"company", "exchange", "year", "text_path"}

// Stats summarizes a labeling run.
type Stats struct {
	Reports     int `json:"reports"`
	MissingText int `json:"missing_text"`
	Generic     int `json:"generic"`
	Skipped     int `json:"skipped"`
	dataset.Summary
}

// Result is the outcome of labeling.
type Result struct {
	RunID string             `json:"run_id,omitempty"`
	Rows  []model.DatasetRow `json:"-"`
	Stats Stats              `json:"stats"`
}

// Labeler builds the labeled excerpt dataset from collector output.
type Labeler struct {
	cfg   config.LabelConfig
	opts  Options
	store store.Store
}

// New creates a Labeler. st may be nil to skip the run ledger.
func New(cfg config.LabelConfig, st store.Store) *Labeler {
	if cfg.ExcerptsPerReport <= 0 {
		cfg.ExcerptsPerReport = 3
	}
	return &Labeler{
		cfg: cfg,
		opts: Options{
			MaxChars:       cfg.MaxExcerptChars,
			ContextLines:   cfg.ContextLines,
			MinWindowChars: cfg.MinWindowChars,
		},
		store: st,
	}
}

// Build reads the metadata table at metadataPath and labels excerpts from
// each report's text file. Reports whose text file is missing are skipped.
// A report with no scope excerpt contributes one generic label-0 excerpt
// when it mentions emissions at all.
func (l *Labeler) Build(ctx context.Context, metadataPath string) (*Result, error) {
	f, err := os.Open(metadataPath)
	if err != nil {
		return nil, eris.Wrapf(err, "labeler: open metadata %s", metadataPath)
	}
	defer f.Close() //nolint:errcheck

	// Stops the reader when a report fails part way through.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := &Result{}
	recCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{Required: metadataRequired, TrimSpace: true})
	for rec := range recCh {
		res.Stats.Reports++
		rows, err := l.label(rec, &res.Stats)
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, rows...)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "labeler: read metadata %s", metadataPath)
	}

	res.Stats.Summary = dataset.Summarize(res.Rows)
	log := zap.L().With(zap.Int("rows", res.Stats.Rows))
	log.Info("labeler: dataset built",
		zap.Int("reports", res.Stats.Reports),
		zap.Int("companies", res.Stats.UniqueCompanies),
		zap.Strings("exchanges", res.Stats.Exchanges),
		zap.Ints("years", res.Stats.Years),
		zap.Int("label_0", res.Stats.Label0),
		zap.Int("label_1", res.Stats.Label1),
	)
	if res.Stats.Rows > 0 && res.Stats.Label1 == 0 {
		log.Warn("labeler: no scope 3 reporting found, all labels are 0")
	}
	return res, nil
}

func (l *Labeler) label(rec fetcher.Record, stats *Stats) ([]model.DatasetRow, error) {
	company := rec["company"]
	log := zap.L().With(zap.String("company", company), zap.String("year", rec["year"]))

	year, err := strconv.Atoi(rec["year"])
	if err != nil {
		log.Warn("labeler: invalid year, skipping report")
		stats.Skipped++
		return nil, nil
	}

	data, err := os.ReadFile(rec["text_path"])
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("labeler: text file not found", zap.String("path", rec["text_path"]))
		stats.MissingText++
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "labeler: read %s", rec["text_path"])
	}
	text := strings.ToValidUTF8(string(data), "")

	row := model.DatasetRow{CompanyName: company, Exchange: model.Exchange(rec["exchange"]), Year: year}

	excerpts := FindExcerpts(text, l.opts)
	if len(excerpts) == 0 {
		generic, ok := GenericExcerpt(text, l.opts)
		if !ok {
			log.Info("labeler: no scope or emissions text")
			return nil, nil
		}
		log.Info("labeler: no scope mentions, using generic excerpt")
		stats.Generic++
		row.TextExcerpt = generic
		row.Label = model.LabelPartial
		return []model.DatasetRow{row}, nil
	}

	excerpts = excerpts[:min(len(excerpts), l.cfg.ExcerptsPerReport)]
	rows := make([]model.DatasetRow, len(excerpts))
	for i, ex := range excerpts {
		row.TextExcerpt = ex.Text
		row.Label = ex.Label
		rows[i] = row
		log.Debug("labeler: excerpt",
			zap.Int("label", int(ex.Label)),
			zap.String("scopes", ex.Scopes()),
			zap.Int("chars", len([]rune(ex.Text))),
		)
	}
	return rows, nil
}

// Run builds the dataset from the configured metadata and writes it to the
// configured output path.
func (l *Labeler) Run(ctx context.Context) (*Result, error) {
	tr := store.StartRun(ctx, l.store, model.StageLabel)

	var res *Result
	_, err := tr.Phase(ctx, "excerpts", func() (*model.PhaseResult, error) {
		var err error
		res, err = l.Build(ctx, l.cfg.MetadataPath)
		if err != nil {
			return nil, err
		}
		if len(res.Rows) == 0 {
			return nil, ErrNoExcerpts
		}
		return &model.PhaseResult{
			Items:    len(res.Rows),
			Metadata: map[string]any{"label_0": res.Stats.Label0, "label_1": res.Stats.Label1},
		}, nil
	})
	if err == nil {
		_, err = tr.Phase(ctx, "write", func() (*model.PhaseResult, error) {
			if err := dataset.Write(l.cfg.OutputPath, res.Rows); err != nil {
				return nil, err
			}
			return &model.PhaseResult{Items: len(res.Rows), Metadata: map[string]any{"path": l.cfg.OutputPath}}, nil
		})
	}

	var stats any
	if res != nil {
		stats = res.Stats
		res.RunID = tr.RunID()
	}
	tr.Finish(ctx, stats, err)
	if err != nil {
		return nil, err
	}
	zap.L().Info("labeler: saved dataset", zap.String("path", l.cfg.OutputPath))
	return res, nil
}
