package pdftext

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Native extracts text in-process with github.com/ledongthuc/pdf.
type Native struct {
	maxPages int
	minChars int
}

// NewNative creates a Native extractor reading at most maxPages pages.
// maxPages <= 0 reads every page.
func NewNative(maxPages, minChars int) *Native {
	return &Native{maxPages: maxPages, minChars: minChars}
}

// ExtractText reads up to maxPages pages. Pages that fail to decode are skipped.
func (n *Native) ExtractText(ctx context.Context, pdfPath string) (text string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = eris.Errorf("pdftext: malformed pdf %s: %v", pdfPath, r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		return "", eris.Wrapf(err, "pdftext: open %s", pdfPath)
	}
	defer f.Close() //nolint:errcheck

	pages := r.NumPage()
	if n.maxPages > 0 && pages > n.maxPages {
		pages = n.maxPages
	}

	var sb strings.Builder
	skipped := 0
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "pdftext: context cancelled")
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := pageText(page)
		if err != nil {
			skipped++
			continue
		}
		sb.WriteString(txt)
		sb.WriteString("\n")
	}

	if skipped > 0 {
		zap.L().Debug("pdftext: skipped unreadable pages",
			zap.String("path", pdfPath),
			zap.Int("skipped", skipped),
		)
	}

	return finish(sb.String(), pdfPath, n.minChars)
}

// pageText rebuilds the page's lines from glyph positions. A change in
// baseline starts a new line; a horizontal gap wider than a fraction of
// the font size becomes a space.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page decode: %v", r)
		}
	}()

	var (
		lines   []string
		line    strings.Builder
		lastY   float64
		lastEnd float64
		started bool
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for _, g := range page.Content().Text {
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		switch {
		case !started:
			started = true
		case math.Abs(g.Y-lastY) > size/2:
			flush()
		case g.X-lastEnd > size*0.2:
			line.WriteByte(' ')
		}
		line.WriteString(g.S)
		lastY = g.Y
		lastEnd = g.X + g.W
	}
	flush()

	return strings.Join(lines, "\n"), nil
}
