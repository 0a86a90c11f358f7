package dataset

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scope-cli/internal/model"
)

const (
	// MaxExcerptChars bounds text_excerpt length in characters.
	MaxExcerptChars = 500
	// MinUniqueCompanies is the diversity level below which Validate warns.
	MinUniqueCompanies = 10
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = eris.New("dataset: invalid")

// Validate checks a dataset is ready for training: exact column order, at
// least one label-1 row, labels of 0 or 1, no empty fields and excerpts
// within MaxExcerptChars. Low company diversity is returned as a warning.
func Validate(rows []model.DatasetRow, header []string) ([]string, error) {
	if !slices.Equal(header, model.DatasetColumns) {
		return nil, eris.Wrapf(ErrInvalid, "columns are [%s], want [%s]",
			strings.Join(header, ", "), strings.Join(model.DatasetColumns, ", "))
	}

	var problems []string
	var positives int
	for i, r := range rows {
		line := i + 2
		switch r.Label {
		case model.LabelFull:
			positives++
		case model.LabelPartial:
		default:
			problems = append(problems, fmt.Sprintf("line %d: label %d is not 0 or 1", line, r.Label))
		}
		if empty := emptyFields(r); len(empty) > 0 {
			problems = append(problems, fmt.Sprintf("line %d: empty %s", line, strings.Join(empty, ", ")))
		}
		if n := utf8.RuneCountInString(r.TextExcerpt); n > MaxExcerptChars {
			problems = append(problems, fmt.Sprintf("line %d: excerpt is %d characters", line, n))
		}
	}
	if positives == 0 {
		problems = append(problems, "no label 1 examples")
	}
	if len(problems) > 0 {
		return nil, eris.Wrap(ErrInvalid, strings.Join(problems, "; "))
	}

	var warnings []string
	if n := Summarize(rows).UniqueCompanies; n < MinUniqueCompanies {
		warnings = append(warnings, fmt.Sprintf("only %d unique companies (fewer than %d)", n, MinUniqueCompanies))
	}
	return warnings, nil
}

func emptyFields(r model.DatasetRow) []string {
	var empty []string
	if strings.TrimSpace(r.CompanyName) == "" {
		empty = append(empty, "company_name")
	}
	if strings.TrimSpace(string(r.Exchange)) == "" {
		empty = append(empty, "exchange")
	}
	if r.Year == 0 {
		empty = append(empty, "year")
	}
	if strings.TrimSpace(r.TextExcerpt) == "" {
		empty = append(empty, "text_excerpt")
	}
	return empty
}
