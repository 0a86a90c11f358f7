package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileFetcherFunc func(ctx context.Context, url, path string) (int64, error)

func (f fileFetcherFunc) DownloadToFile(ctx context.Context, url, path string) (int64, error) {
	return f(ctx, url, path)
}

func writeBytes(n int) fileFetcherFunc {
	return func(_ context.Context, _ string, path string) (int64, error) {
		return int64(n), os.WriteFile(path, make([]byte, n), 0o644)
	}
}

func TestDownloader_Path(t *testing.T) {
	d := NewDownloader(nil, "pdfs", 1000)
	assert.Equal(t, filepath.Join("pdfs", "Apple Inc_2023.pdf"), d.Path("Apple Inc.", 2023))
}

func TestDownloader_Download(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pdfs")
	d := NewDownloader(writeBytes(4096), dir, 1000)

	path, err := d.Download(context.Background(), "https://example.com/a.pdf", "Acme Corp", 2022)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Acme Corp_2022.pdf"), path)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), fi.Size())
}

func TestDownloader_TooSmall(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(writeBytes(200), dir, 1000)

	_, err := d.Download(context.Background(), "https://example.com/a.pdf", "Acme Corp", 2022)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooSmall)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloader_FetchError(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(fileFetcherFunc(func(_ context.Context, _, path string) (int64, error) {
		_ = os.WriteFile(path, []byte("partial"), 0o644)
		return 0, errors.New("connection reset")
	}), dir, 1000)

	_, err := d.Download(context.Background(), "https://example.com/a.pdf", "Acme Corp", 2022)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloader_ReplacesUndersizedFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(writeBytes(2048), dir, 1000)
	require.NoError(t, os.WriteFile(d.Path("Acme Corp", 2022), []byte("stub"), 0o644))

	path, err := d.Download(context.Background(), "https://example.com/a.pdf", "Acme Corp", 2022)
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), fi.Size())
}
