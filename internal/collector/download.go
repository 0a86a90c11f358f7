package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrTooSmall is returned for downloads below the minimum PDF size, which
// are usually error pages served with a 200.
var ErrTooSmall = errors.New("download too small")

const maxSafeNameRunes = 50

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)

// SafeName strips characters other than letters, digits, underscore,
// whitespace and hyphen, and truncates to 50 characters.
func SafeName(company string) string {
	r := []rune(unsafeNameChars.ReplaceAllString(company, ""))
	if len(r) > maxSafeNameRunes {
		r = r[:maxSafeNameRunes]
	}
	return string(r)
}

// FileFetcher downloads a URL to a local path.
type FileFetcher interface {
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Downloader stores report PDFs as <SafeName>_<year>.pdf under dir.
type Downloader struct {
	fetcher  FileFetcher
	dir      string
	minBytes int64
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(f FileFetcher, dir string, minBytes int64) *Downloader {
	return &Downloader{fetcher: f, dir: dir, minBytes: minBytes}
}

// Path returns where the report for company and year is stored.
func (d *Downloader) Path(company string, year int) string {
	return filepath.Join(d.dir, fmt.Sprintf("%s_%d.pdf", SafeName(company), year))
}

// Download fetches url unless a large enough copy already exists and returns
// the local path. Files under the minimum size are removed and rejected.
func (d *Downloader) Download(ctx context.Context, url, company string, year int) (string, error) {
	path := d.Path(company, year)
	if fi, err := os.Stat(path); err == nil && fi.Size() > d.minBytes {
		zap.L().Debug("collector: reusing existing pdf", zap.String("path", path))
		return path, nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "collector: create %s", d.dir)
	}

	part := path + ".part"
	n, err := d.fetcher.DownloadToFile(ctx, url, part)
	if err != nil {
		_ = os.Remove(part)
		return "", eris.Wrapf(err, "collector: download %s", url)
	}
	if n < d.minBytes {
		_ = os.Remove(part)
		return "", eris.Wrapf(ErrTooSmall, "collector: %s is %d bytes", url, n)
	}
	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return "", eris.Wrapf(err, "collector: move %s", path)
	}

	zap.L().Info("collector: downloaded pdf", zap.String("path", path), zap.Int64("bytes", n))
	return path, nil
}
