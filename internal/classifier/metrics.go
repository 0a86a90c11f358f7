package classifier

import (
	"math"
	"slices"

	"github.com/sells-group/scope-cli/internal/model"
)

// Metrics are binary classification scores with LabelFull as the positive
// class. Undefined ratios are 0.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	// Confusion is indexed [actual][predicted].
	Confusion [2][2]int `json:"confusion"`
}

// Score compares predicted labels against actual ones.
func Score(actual, predicted []model.Label) Metrics {
	var m Metrics
	n := min(len(actual), len(predicted))
	if n == 0 {
		return m
	}
	for i := range n {
		m.Confusion[bin(actual[i])][bin(predicted[i])]++
	}
	tn, fp := m.Confusion[0][0], m.Confusion[0][1]
	fn, tp := m.Confusion[1][0], m.Confusion[1][1]

	m.Accuracy = float64(tp+tn) / float64(n)
	m.Precision = ratio(tp, tp+fp)
	m.Recall = ratio(tp, tp+fn)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

func bin(l model.Label) int {
	if l == model.LabelFull {
		return 1
	}
	return 0
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Evaluate scores m on rows.
func Evaluate(m *Model, rows []model.DatasetRow) Metrics {
	vs := make([]vector, len(rows))
	for i, r := range rows {
		vs[i] = m.vectorize(r.TextExcerpt)
	}
	return evaluate(m, vs, labels(rows))
}

func evaluate(m *Model, vs []vector, actual []model.Label) Metrics {
	predicted := make([]model.Label, len(vs))
	for i, v := range vs {
		predicted[i], _ = m.predictVector(v)
	}
	return Score(actual, predicted)
}

func labels(rows []model.DatasetRow) []model.Label {
	out := make([]model.Label, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

// Summary is the one-line JSON report printed after training.
type Summary struct {
	FilesUsedForTraining int      `json:"files_used_for_training"`
	ExchangesInDataset   []string `json:"exchanges_in_dataset"`
	Accuracy             float64  `json:"accuracy"`
	Precision            float64  `json:"precision"`
	Recall               float64  `json:"recall"`
	F1                   float64  `json:"f1"`
}

// NewSummary reports the distinct companies and exchanges in the training
// rows alongside metrics rounded to two decimals.
func NewSummary(train []model.DatasetRow, m Metrics) Summary {
	companies := make(map[string]bool)
	exchanges := []string{}
	for _, r := range train {
		companies[r.CompanyName] = true
		if !slices.Contains(exchanges, string(r.Exchange)) {
			exchanges = append(exchanges, string(r.Exchange))
		}
	}
	slices.Sort(exchanges)
	return Summary{
		FilesUsedForTraining: len(companies),
		ExchangesInDataset:   exchanges,
		Accuracy:             round2(m.Accuracy),
		Precision:            round2(m.Precision),
		Recall:               round2(m.Recall),
		F1:                   round2(m.F1),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
