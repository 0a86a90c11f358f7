package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteTable writes a headed CSV to path atomically: rows go to a temp file
// in the same directory which is then renamed over path.
func WriteTable(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "dataset: create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "dataset: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "dataset: write header")
	}
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "dataset: write rows")
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "dataset: chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "dataset: close temp file")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "dataset: rename to %s", path)
	}
	return nil
}
