package labeler

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/dataset"
)

const (
	maxSampleContexts = 3
	contextRadius     = 100
	contextMaxRunes   = 200
)

// DiagnosticColumns is the header of the diagnostics CSV.
var DiagnosticColumns = []string{"file", "has_scope3", "count", "patterns"}

// Sample is text around the first match of a pattern.
type Sample struct {
	Pattern string `json:"pattern"`
	Context string `json:"context"`
}

// Finding records Scope 3 mentions in one text file.
type Finding struct {
	File      string   `json:"file"`
	HasScope3 bool     `json:"has_scope3"`
	Count     int      `json:"count"`
	Patterns  []string `json:"patterns"`
	Samples   []Sample `json:"samples,omitempty"`
}

// Record renders the finding as a diagnostics CSV row.
func (f Finding) Record() []string {
	patterns := "none"
	if len(f.Patterns) > 0 {
		patterns = strings.Join(f.Patterns, ",")
	}
	return []string{f.File, strconv.FormatBool(f.HasScope3), strconv.Itoa(f.Count), patterns}
}

// ScanText counts matches of each Scope 3 pattern family in text.
func ScanText(name, text string) Finding {
	f := Finding{File: name}
	for _, p := range diagnosticPatterns {
		matches := p.re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		f.HasScope3 = true
		f.Count += len(matches)
		f.Patterns = append(f.Patterns, p.name)
		if len(f.Samples) < maxSampleContexts {
			f.Samples = append(f.Samples, Sample{Pattern: p.name, Context: around(text, matches[0])})
		}
	}
	return f
}

// around returns up to 200 characters starting 100 bytes before the match,
// on one line.
func around(text string, loc []int) string {
	start := max(0, loc[0]-contextRadius)
	end := min(len(text), loc[1]+contextRadius)
	ctx := strings.ToValidUTF8(text[start:end], "")
	return truncate(strings.ReplaceAll(ctx, "\n", " "), contextMaxRunes)
}

// Diagnose scans every .txt file in dir for Scope 3 mentions. Files are
// returned in name order.
func Diagnose(ctx context.Context, dir string) ([]Finding, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, eris.Wrapf(err, "labeler: list %s", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, eris.Wrapf(err, "labeler: text directory %s", dir)
	}
	slices.Sort(paths)

	findings := make([]Finding, 0, len(paths))
	var withScope3 int
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "labeler: diagnose interrupted")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "labeler: read %s", path)
		}
		f := ScanText(filepath.Base(path), strings.ToValidUTF8(string(data), ""))
		if f.HasScope3 {
			withScope3++
		}
		findings = append(findings, f)
		if (i+1)%10 == 0 {
			zap.L().Info("labeler: diagnose progress", zap.Int("done", i+1), zap.Int("total", len(paths)))
		}
	}

	zap.L().Info("labeler: diagnose complete",
		zap.Int("files", len(paths)),
		zap.Int("with_scope3", withScope3),
	)
	return findings, nil
}

// WriteDiagnostics writes findings as a CSV table.
func WriteDiagnostics(path string, findings []Finding) error {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = f.Record()
	}
	return dataset.WriteTable(path, DiagnosticColumns, rows)
}
