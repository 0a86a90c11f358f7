// Package pdftext extracts plain text from annual report PDFs.
package pdftext

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/scope-cli/internal/config"
)

// ErrTooShort is returned when a PDF yields too little text to be useful,
// which usually means it is scanned or image-only.
var ErrTooShort = errors.New("extracted text too short")

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.ExtractConfig) (Extractor, error) {
	switch cfg.Provider {
	case "native", "":
		return NewNative(cfg.MaxPages, cfg.MinChars), nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath, cfg.MaxPages, cfg.MinChars), nil
	default:
		return nil, eris.Errorf("pdftext: unknown provider %q", cfg.Provider)
	}
}

// Normalize folds compatibility characters (ligatures, full-width digits),
// unifies line endings and trims surrounding whitespace.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(norm.NFKC.String(text))
}

// finish normalizes raw output and enforces the minimum length.
func finish(raw, pdfPath string, minChars int) (string, error) {
	text := Normalize(raw)
	if n := utf8.RuneCountInString(text); n <= minChars {
		return "", eris.Wrapf(ErrTooShort, "pdftext: %s has %d chars", pdfPath, n)
	}
	return text, nil
}
