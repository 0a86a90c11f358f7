package labeler

import "regexp"

// Scope mention patterns. All patterns run against lower-cased text.
var (
	scope1Pattern = regexp.MustCompile(`\bscope\s*1(?:\s+emissions?|\s+ghg|\b|\s*[,&-])`)
	scope2Pattern = regexp.MustCompile(`\bscope\s*2(?:\s+emissions?|\s+ghg|\b|\s*[,&-])`)
	scope3Pattern = regexp.MustCompile(`\bscope\s*3(?:\s+emissions?|\s+ghg|\b|\s*[,&-])`)
)

// reportingPatterns indicate Scope 3 figures are actually disclosed.
var reportingPatterns = compileAll(
	// direct statements
	`report(?:ed|s|ing)?\s+(?:our\s+)?scope\s*3`,
	`scope\s*3\s+emissions?\s+(?:are|were|totaled?|amount(?:ed)?)`,
	`scope\s*3\s+emissions?\s+(?:of|:)?\s*[0-9]`,
	`(?:measured|calculated|disclosed?|assess(?:ed)?|monitor(?:ed)?)\s+(?:our\s+)?scope\s*3`,

	// combined scopes
	`scope\s*1,?\s*2,?\s*(?:and|&)\s*3`,
	`scope\s*1,?\s*2\s*(?:and|&)\s*3\s+emissions?`,
	`all\s+three\s+scopes?`,
	`scopes?\s*1[-,]3`,

	// quantities, including table rows
	`scope\s*3.*\d+[,\d]*\s*(?:tonnes?|tco2e?|mtco2e?|kt|mt)`,
	`\d+[,\d]*\s*(?:tonnes?|tco2e?|mtco2e?|kt|mt).*scope\s*3`,
	`scope\s*3.*carbon`,
	`total.*scope\s*3.*emissions?.*\d+`,
	`scope\s*3.*total.*\d+`,

	// reporting context
	`scope\s*3.*footprint`,
	`scope\s*3.*inventory`,
	`scope\s*3.*(?:emissions?\s+)?data`,
	`scope\s*3.*metrics?`,
	`scope\s*3.*performance`,
	`scope\s*3.*results?`,
	`scope\s*3\s+category`,
	`scope\s*3\s+emissions?\s+table`,
	`ghg.*scope\s*3`,
	`scope\s*3.*ghg`,
)

// futurePatterns mark Scope 3 as planned rather than reported.
var futurePatterns = compileAll(
	`(?:will|plan|intend|aim|target|goal|future|upcoming|next year).*scope\s*3`,
	`scope\s*3.*(?:in\s+)?(?:202[6-9]|203[0-9])`,
	`scope\s*3.*(?:by|until)\s+202[6-9]`,
	`begin.*report.*scope\s*3`,
	`start.*scope\s*3`,
	`working\s+(?:on|toward).*scope\s*3`,
	`develop.*scope\s*3`,
	`currently\s+do\s+not.*scope\s*3`,
	`(?:in\s+the\s+)?process\s+of\s+calculating.*scope\s*3`,
	`to\s+calculate.*scope\s*3`,
	`not\s+yet.*scope\s*3`,
)

// genericKeywords select a fallback excerpt from reports with no scope mentions.
var genericKeywords = []string{"emission", "carbon", "ghg", "greenhouse gas", "climate"}

// diagnosticPatterns are the Scope 3 families counted by Diagnose, in report
// order. They are case-insensitive and run on the original text.
var diagnosticPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"basic", regexp.MustCompile(`(?i)\bscope\s*3\b`)},
	{"roman", regexp.MustCompile(`(?i)\bscope\s*iii\b`)},
	{"numeric", regexp.MustCompile(`(?i)\bscope\s*three\b`)},
	{"reporting", regexp.MustCompile(`(?i)report.*scope\s*3`)},
	{"emissions", regexp.MustCompile(`(?i)scope\s*3.*emissions?`)},
	{"value", regexp.MustCompile(`(?i)scope\s*3.*\d+`)},
	{"all_three", regexp.MustCompile(`(?i)(?:scope\s*[123]).*(?:scope\s*[123]).*(?:scope\s*[123])`)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
