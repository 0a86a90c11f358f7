// Package fetcher downloads pages and files over HTTP and parses CSV tables.
package fetcher

import (
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// GetDocument fetches an HTML page and parses it.
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
}
