package dataset

import (
	"slices"
	"unicode/utf8"

	"github.com/sells-group/scope-cli/internal/model"
)

// Summary describes the make-up of a dataset.
type Summary struct {
	Rows            int      `json:"rows"`
	Label0          int      `json:"label_0"`
	Label1          int      `json:"label_1"`
	UniqueCompanies int      `json:"unique_companies"`
	Exchanges       []string `json:"exchanges"`
	Years           []int    `json:"years"`
	MinExcerpt      int      `json:"min_excerpt_chars"`
	MaxExcerpt      int      `json:"max_excerpt_chars"`
}

// Summarize counts labels and lists the distinct companies, exchanges and
// years in rows.
func Summarize(rows []model.DatasetRow) Summary {
	s := Summary{Rows: len(rows)}
	companies := make(map[string]bool)
	for i, r := range rows {
		switch r.Label {
		case model.LabelPartial:
			s.Label0++
		case model.LabelFull:
			s.Label1++
		}
		companies[r.CompanyName] = true
		if !slices.Contains(s.Exchanges, string(r.Exchange)) {
			s.Exchanges = append(s.Exchanges, string(r.Exchange))
		}
		if !slices.Contains(s.Years, r.Year) {
			s.Years = append(s.Years, r.Year)
		}

		n := utf8.RuneCountInString(r.TextExcerpt)
		if i == 0 || n < s.MinExcerpt {
			s.MinExcerpt = n
		}
		s.MaxExcerpt = max(s.MaxExcerpt, n)
	}
	s.UniqueCompanies = len(companies)
	slices.Sort(s.Exchanges)
	slices.Sort(s.Years)
	return s
}

// Share returns the fraction of rows with label l, or 0 for an empty dataset.
func (s Summary) Share(l model.Label) float64 {
	if s.Rows == 0 {
		return 0
	}
	switch l {
	case model.LabelFull:
		return float64(s.Label1) / float64(s.Rows)
	default:
		return float64(s.Label0) / float64(s.Rows)
	}
}
