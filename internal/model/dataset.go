package model

import "strconv"

// Label is the binary disclosure class of an excerpt.
type Label int

const (
	// LabelPartial marks Scope 1/2 only, or Scope 3 mentioned as a future plan.
	LabelPartial Label = 0
	// LabelFull marks explicit Scope 1, 2 and 3 reporting.
	LabelFull Label = 1
)

// Excerpt is a labeled slice of report text around a scope mention.
type Excerpt struct {
	Text      string `json:"text"`
	Label     Label  `json:"label"`
	HasScope1 bool   `json:"has_scope_1"`
	HasScope2 bool   `json:"has_scope_2"`
	HasScope3 bool   `json:"has_scope_3"`
}

// Scopes returns the short scope tags present, e.g. "S1,S3".
func (e Excerpt) Scopes() string {
	var s string
	for _, tag := range []struct {
		on   bool
		name string
	}{{e.HasScope1, "S1"}, {e.HasScope2, "S2"}, {e.HasScope3, "S3"}} {
		if !tag.on {
			continue
		}
		if s != "" {
			s += ","
		}
		s += tag.name
	}
	return s
}

// DatasetRow is one row of the labeled training or validation table.
type DatasetRow struct {
	CompanyName string   `json:"company_name"`
	Exchange    Exchange `json:"exchange"`
	Year        int      `json:"year"`
	TextExcerpt string   `json:"text_excerpt"`
	Label       Label    `json:"label"`
}

// DatasetColumns is the exact header of dataset and validation CSVs.
var DatasetColumns = []string{"company_name", "exchange", "year", "text_excerpt", "label"}

// Record renders the row in DatasetColumns order.
func (r DatasetRow) Record() []string {
	return []string{
		r.CompanyName,
		string(r.Exchange),
		strconv.Itoa(r.Year),
		r.TextExcerpt,
		strconv.Itoa(int(r.Label)),
	}
}
