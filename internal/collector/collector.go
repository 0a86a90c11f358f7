// Package collector discovers companies on an annual-report directory,
// downloads their annual report PDFs and extracts report text.
package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/scope-cli/internal/config"
	"github.com/sells-group/scope-cli/internal/dataset"
	"github.com/sells-group/scope-cli/internal/model"
	"github.com/sells-group/scope-cli/internal/pdftext"
	"github.com/sells-group/scope-cli/internal/store"
)

// Fetcher is what the collector needs from the HTTP layer.
type Fetcher interface {
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Stats summarizes a collect run.
type Stats struct {
	Companies       int      `json:"companies"`
	Sources         Sources  `json:"sources"`
	WithReports     int      `json:"with_reports"`
	ReportsFound    int      `json:"reports_found"`
	Downloaded      int      `json:"downloaded"`
	Extracted       int      `json:"extracted"`
	UniqueCompanies int      `json:"unique_companies"`
	Exchanges       []string `json:"exchanges"`
	Years           []int    `json:"years"`
}

// Result is the outcome of a collect run.
type Result struct {
	RunID   string         `json:"run_id,omitempty"`
	Reports []model.Report `json:"reports"`
	Stats   Stats          `json:"stats"`
}

// Collector runs the collect stage.
type Collector struct {
	cfg       config.CollectConfig
	dir       *Directory
	dl        *Downloader
	extractor pdftext.Extractor
	store     store.Store
}

// New creates a Collector. st may be nil to skip the run ledger.
func New(cfg config.CollectConfig, f Fetcher, ext pdftext.Extractor, st store.Store, fallback []model.Company) (*Collector, error) {
	dir, err := NewDirectory(f, cfg.BaseURL, fallback, YearRange{Min: cfg.MinYear, Max: cfg.MaxYear})
	if err != nil {
		return nil, err
	}
	return &Collector{
		cfg:       cfg,
		dir:       dir,
		dl:        NewDownloader(f, cfg.PDFDir, cfg.MinPDFBytes),
		extractor: ext,
		store:     st,
	}, nil
}

func (c *Collector) concurrency() int {
	return max(c.cfg.Concurrency, 1)
}

// Run discovers companies, finds and downloads their reports, extracts text
// and writes the metadata table. A run that finds nothing to process ends
// without error and with no metadata written.
func (c *Collector) Run(ctx context.Context) (*Result, error) {
	tr := store.StartRun(ctx, c.store, model.StageCollect)
	res := &Result{RunID: tr.RunID()}

	err := c.run(ctx, tr, res)
	tr.Finish(ctx, res.Stats, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Collector) run(ctx context.Context, tr *store.Tracker, res *Result) error {
	var companies []model.Company
	_, _ = tr.Phase(ctx, "discover", func() (*model.PhaseResult, error) {
		var src Sources
		companies, src = c.dir.Companies(ctx, c.cfg.MinCompanies)
		res.Stats.Companies = len(companies)
		res.Stats.Sources = src
		if len(companies) < c.cfg.MinCompanies {
			zap.L().Warn("collector: fewer companies than requested",
				zap.Int("found", len(companies)),
				zap.Int("target", c.cfg.MinCompanies),
			)
		}
		return &model.PhaseResult{
			Items:    len(companies),
			Metadata: map[string]any{"discovered": src.Discovered, "fallback": src.Fallback},
		}, nil
	})

	var found []model.Report
	if _, err := tr.Phase(ctx, "details", func() (*model.PhaseResult, error) {
		var err error
		found, res.Stats.WithReports, err = c.details(ctx, companies)
		return &model.PhaseResult{Items: len(found)}, err
	}); err != nil {
		return err
	}
	res.Stats.ReportsFound = len(found)
	if len(found) == 0 {
		zap.L().Warn("collector: no reports found; the site may have changed or require authentication")
		return nil
	}

	var downloaded []model.Report
	if _, err := tr.Phase(ctx, "download", func() (*model.PhaseResult, error) {
		var err error
		downloaded, err = c.download(ctx, found)
		return &model.PhaseResult{Items: len(downloaded)}, err
	}); err != nil {
		return err
	}
	res.Stats.Downloaded = len(downloaded)
	if len(downloaded) == 0 {
		zap.L().Warn("collector: no pdfs downloaded")
		return nil
	}

	var extracted []model.Report
	if _, err := tr.Phase(ctx, "extract", func() (*model.PhaseResult, error) {
		var err error
		extracted, err = c.extract(ctx, downloaded)
		return &model.PhaseResult{Items: len(extracted)}, err
	}); err != nil {
		return err
	}
	res.Stats.Extracted = len(extracted)
	if len(extracted) == 0 {
		zap.L().Warn("collector: no data processed successfully")
		return nil
	}

	if _, err := tr.Phase(ctx, "metadata", func() (*model.PhaseResult, error) {
		rows := make([][]string, len(extracted))
		for i, r := range extracted {
			rows[i] = r.Record()
		}
		if err := dataset.WriteTable(c.cfg.MetadataPath, model.MetadataColumns, rows); err != nil {
			return nil, err
		}
		tr.SaveReports(ctx, extracted)
		return &model.PhaseResult{Items: len(rows), Metadata: map[string]any{"path": c.cfg.MetadataPath}}, nil
	}); err != nil {
		return err
	}

	res.Reports = extracted
	res.Stats.UniqueCompanies, res.Stats.Exchanges, res.Stats.Years = summarize(extracted)
	zap.L().Info("collector: processed reports",
		zap.Int("reports", len(extracted)),
		zap.Int("companies", res.Stats.UniqueCompanies),
		zap.Strings("exchanges", res.Stats.Exchanges),
		zap.Ints("years", res.Stats.Years),
		zap.String("metadata", c.cfg.MetadataPath),
	)
	return nil
}

// details visits each company page and flattens their report links. It
// also returns how many companies had at least one report.
func (c *Collector) details(ctx context.Context, companies []model.Company) ([]model.Report, int, error) {
	perCompany, err := forEach(ctx, c.concurrency(), companies, func(ctx context.Context, i int, co model.Company) ([]model.Report, bool) {
		log := zap.L().With(zap.String("company", co.Name), zap.Int("index", i+1), zap.Int("total", len(companies)))
		d, err := c.dir.Details(ctx, co)
		if err != nil {
			log.Warn("collector: company page failed", zap.Error(err))
			return nil, false
		}
		if d == nil {
			log.Info("collector: no annual reports on page")
			return nil, false
		}
		log.Info("collector: found reports",
			zap.String("name", d.Name),
			zap.String("exchange", string(d.Exchange)),
			zap.Int("reports", len(d.Reports)),
		)
		out := make([]model.Report, len(d.Reports))
		for j, link := range d.Reports {
			out[j] = model.Report{Company: d.Name, Exchange: d.Exchange, Year: link.Year, URL: link.URL}
		}
		return out, true
	})
	if err != nil {
		return nil, 0, err
	}

	// One file per company and year: later links for the same pair are dropped.
	seen := make(map[string]bool)
	var reports []model.Report
	for _, r := range slices.Concat(perCompany...) {
		key := fmt.Sprintf("%s_%d", SafeName(r.Company), r.Year)
		if seen[key] {
			continue
		}
		seen[key] = true
		reports = append(reports, r)
	}
	return reports, len(perCompany), nil
}

// download fetches each report PDF, keeping those that arrive intact.
func (c *Collector) download(ctx context.Context, reports []model.Report) ([]model.Report, error) {
	return forEach(ctx, c.concurrency(), reports, func(ctx context.Context, _ int, r model.Report) (model.Report, bool) {
		path, err := c.dl.Download(ctx, r.URL, r.Company, r.Year)
		if err != nil {
			zap.L().Warn("collector: download failed",
				zap.String("company", r.Company),
				zap.Int("year", r.Year),
				zap.Error(err),
			)
			return r, false
		}
		r.PDFPath = path
		return r, true
	})
}

// extract pulls text from each PDF and writes it next to the others.
func (c *Collector) extract(ctx context.Context, reports []model.Report) ([]model.Report, error) {
	if err := os.MkdirAll(c.cfg.TextDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "collector: create %s", c.cfg.TextDir)
	}
	return forEach(ctx, c.concurrency(), reports, func(ctx context.Context, _ int, r model.Report) (model.Report, bool) {
		log := zap.L().With(zap.String("company", r.Company), zap.Int("year", r.Year))
		text, err := c.extractor.ExtractText(ctx, r.PDFPath)
		if errors.Is(err, pdftext.ErrTooShort) {
			log.Warn("collector: extracted text too short", zap.Error(err))
			return r, false
		}
		if err != nil {
			log.Warn("collector: text extraction failed", zap.Error(err))
			return r, false
		}

		path := filepath.Join(c.cfg.TextDir, fmt.Sprintf("%s_%d.txt", SafeName(r.Company), r.Year))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			log.Warn("collector: write text failed", zap.Error(err))
			return r, false
		}
		log.Info("collector: extracted text", zap.Int("chars", len(text)))
		r.TextPath = path
		return r, true
	})
}

// forEach runs fn over items with bounded concurrency and returns the kept
// results in input order. It fails only when ctx is done.
func forEach[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, int, T) (R, bool)) ([]R, error) {
	results := make([]R, len(items))
	kept := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], kept[i] = fn(gctx, i, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "collector: interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "collector: interrupted")
	}

	out := make([]R, 0, len(items))
	for i, r := range results {
		if kept[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

func summarize(reports []model.Report) (int, []string, []int) {
	companies := make(map[string]bool)
	var exchanges []string
	var years []int
	for _, r := range reports {
		companies[r.Company] = true
		if !slices.Contains(exchanges, string(r.Exchange)) {
			exchanges = append(exchanges, string(r.Exchange))
		}
		if !slices.Contains(years, r.Year) {
			years = append(years, r.Year)
		}
	}
	slices.Sort(exchanges)
	slices.Sort(years)
	return len(companies), exchanges, years
}
