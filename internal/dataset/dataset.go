// Package dataset reads, checks and writes the labeled excerpt tables used
// for training and validation.
package dataset

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scope-cli/internal/fetcher"
	"github.com/sells-group/scope-cli/internal/model"
)

// Read loads a dataset CSV and returns its rows and header as found in the
// file. Column order is not enforced here; see Validate.
func Read(path string) ([]model.DatasetRow, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	recs, err := fetcher.ReadCSV(context.Background(), f, fetcher.CSVOptions{
		Required: model.DatasetColumns,
		HeaderCh: headerCh,
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	header := <-headerCh

	rows := make([]model.DatasetRow, 0, len(recs))
	for i, rec := range recs {
		row, err := parseRow(rec)
		if err != nil {
			// Line numbers count the header.
			return nil, nil, eris.Wrapf(err, "dataset: %s line %d", path, i+2)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func parseRow(rec fetcher.Record) (model.DatasetRow, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rec["year"]))
	if err != nil {
		return model.DatasetRow{}, eris.Errorf("invalid year %q", rec["year"])
	}
	label, err := strconv.Atoi(strings.TrimSpace(rec["label"]))
	if err != nil {
		return model.DatasetRow{}, eris.Errorf("invalid label %q", rec["label"])
	}
	return model.DatasetRow{
		CompanyName: rec["company_name"],
		Exchange:    model.Exchange(rec["exchange"]),
		Year:        year,
		TextExcerpt: rec["text_excerpt"],
		Label:       model.Label(label),
	}, nil
}

// Write stores rows as a dataset CSV with the standard header.
func Write(path string, rows []model.DatasetRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}
	return WriteTable(path, model.DatasetColumns, records)
}
