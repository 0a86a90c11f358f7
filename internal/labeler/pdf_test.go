package labeler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scope-cli/internal/model"
	"github.com/sells-group/scope-cli/internal/pdftext"
)

// writeReportPDF writes a one-page Helvetica PDF, one Td-positioned line per entry.
func writeReportPDF(t *testing.T, lines []string) string {
	t.Helper()

	var content strings.Builder
	content.WriteString("BT /F1 10 Tf 50 780 Td")
	for i, line := range lines {
		if i > 0 {
			content.WriteString(" 0 -12 Td")
		}
		fmt.Fprintf(&content, " (%s) Tj", line)
	}
	content.WriteString(" ET")

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [4 0 R] /Count 1 >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents 5 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := sb.Len()
	fmt.Fprintf(&sb, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&sb, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&sb, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	path := filepath.Join(t.TempDir(), "annual-report.pdf")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestFindExcerpts_FromExtractedPDF(t *testing.T) {
	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines, fmt.Sprintf("Segment %d revenue grew steadily on higher volumes and pricing.", i))
	}
	lines = append(lines,
		"Our Scope 1 emissions were 1,200 tCO2e and Scope 2 emissions were 3,400 tCO2e.",
		"Scope 3 emissions were 52,000 tCO2e, mostly from purchased goods.",
	)
	for i := 21; i <= 40; i++ {
		lines = append(lines, fmt.Sprintf("Segment %d operating margin improved against the prior year.", i))
	}

	text, err := pdftext.NewNative(0, 100).ExtractText(context.Background(), writeReportPDF(t, lines))
	require.NoError(t, err)
	require.Len(t, strings.Split(text, "\n"), len(lines))

	got := FindExcerpts(text, DefaultOptions)
	require.NotEmpty(t, got)

	ex := got[0]
	assert.Contains(t, ex.Text, "Scope 1 emissions were 1,200 tCO2e")
	assert.NotContains(t, ex.Text, "Segment 1 revenue")
	assert.LessOrEqual(t, utf8.RuneCountInString(ex.Text), DefaultOptions.MaxChars)
	assert.True(t, ex.HasScope1)
	assert.True(t, ex.HasScope2)
	assert.True(t, ex.HasScope3)
	assert.Equal(t, model.LabelFull, ex.Label)
}
