package dataset

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/scope-cli/internal/model"
)

// SheetName is the worksheet WriteXLSX writes rows to.
const SheetName = "dataset"

// WriteXLSX exports rows as a single-sheet spreadsheet for review.
func WriteXLSX(path string, rows []model.DatasetRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.DatasetColumns {
		header.AddCell().SetString(col)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.CompanyName)
		row.AddCell().SetString(string(r.Exchange))
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetString(r.TextExcerpt)
		row.AddCell().SetInt(int(r.Label))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "xlsx: create %s", filepath.Dir(path))
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}
