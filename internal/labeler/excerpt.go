package labeler

import (
	"strings"
	"unicode/utf8"

	"github.com/sells-group/scope-cli/internal/model"
)

const (
	minExcerptRunes = 50
	dedupPrefix     = 200
)

// Options bounds excerpt extraction.
type Options struct {
	// MaxChars caps each excerpt, in characters.
	MaxChars int
	// ContextLines is how many lines either side of a scope mention join
	// its window.
	ContextLines int
	// MinWindowChars drops windows shorter than this after trimming.
	MinWindowChars int
}

// DefaultOptions are the standard excerpt bounds.
var DefaultOptions = Options{MaxChars: 500, ContextLines: 3, MinWindowChars: 100}

func (o Options) withDefaults() Options {
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultOptions.MaxChars
	}
	if o.ContextLines < 0 {
		o.ContextLines = DefaultOptions.ContextLines
	}
	if o.MinWindowChars <= 0 {
		o.MinWindowChars = DefaultOptions.MinWindowChars
	}
	return o
}

// FindExcerpts returns labeled windows of text around lines that mention
// "scope". A window must name Scope 1 or Scope 2 to be kept. Windows whose
// first 200 characters repeat an earlier excerpt are dropped.
func FindExcerpts(text string, opts Options) []model.Excerpt {
	opts = opts.withDefaults()
	lines := strings.Split(text, "\n")

	var excerpts []model.Excerpt
	seen := make(map[string]bool)
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), "scope") {
			continue
		}
		start := max(0, i-opts.ContextLines)
		end := min(len(lines), i+opts.ContextLines+1)
		window := strings.TrimSpace(strings.Join(lines[start:end], " "))
		if utf8.RuneCountInString(window) < opts.MinWindowChars {
			continue
		}

		lower := strings.ToLower(window)
		ex := model.Excerpt{
			HasScope1: scope1Pattern.MatchString(lower),
			HasScope2: scope2Pattern.MatchString(lower),
			HasScope3: scope3Pattern.MatchString(lower),
		}
		if !ex.HasScope1 && !ex.HasScope2 {
			continue
		}
		ex.Label = DetermineLabel(window)
		ex.Text = truncate(window, opts.MaxChars)

		if utf8.RuneCountInString(ex.Text) <= minExcerptRunes {
			continue
		}
		key := truncate(ex.Text, dedupPrefix)
		if seen[key] {
			continue
		}
		seen[key] = true
		excerpts = append(excerpts, ex)
	}
	return excerpts
}

// DetermineLabel returns LabelFull when text reports Scope 3 figures and
// does not frame Scope 3 as a future plan. Anything else, including text
// with no Scope 3 mention, is LabelPartial.
func DetermineLabel(text string) model.Label {
	lower := strings.ToLower(text)
	if !scope3Pattern.MatchString(lower) {
		return model.LabelPartial
	}
	if matchAny(reportingPatterns, lower) && !matchAny(futurePatterns, lower) {
		return model.LabelFull
	}
	return model.LabelPartial
}

// GenericExcerpt returns the first line longer than the minimum window that
// mentions emissions or climate, truncated to maxChars. ok is false when no
// line qualifies.
func GenericExcerpt(text string, opts Options) (excerpt string, ok bool) {
	opts = opts.withDefaults()
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !containsAny(lower, genericKeywords) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) > opts.MinWindowChars {
			return truncate(trimmed, opts.MaxChars), true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
