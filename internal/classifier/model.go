package classifier

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scope-cli/internal/model"
)

const (
	// ModelFile holds the weights inside a checkpoint directory.
	ModelFile = "model.json"
	// StateFile holds the training history inside a checkpoint directory.
	StateFile = "trainer_state.json"

	checkpointFormat = "scope-cli/hashed-logreg/v1"
	featureSet       = "unigram+bigram"
)

// Model is a binary logistic regression over hashed text features.
// Probability is of LabelFull.
type Model struct {
	buckets   int
	maxLength int
	weights   []float64
	bias      float64
}

// NewModel returns a zero-initialized model.
func NewModel(buckets, maxLength int) *Model {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	return &Model{buckets: buckets, maxLength: maxLength, weights: make([]float64, buckets)}
}

// Buckets returns the feature space size.
func (m *Model) Buckets() int { return m.buckets }

// MaxLength returns the token limit applied to input text.
func (m *Model) MaxLength() int { return m.maxLength }

func (m *Model) vectorize(text string) vector {
	return vectorize(Tokenize(text, m.maxLength), m.buckets)
}

func (m *Model) logit(v vector) float64 {
	z := m.bias
	for _, f := range v {
		z += m.weights[f.index] * f.value
	}
	return z
}

func (m *Model) predictVector(v vector) (model.Label, float64) {
	p := sigmoid(m.logit(v))
	if p >= 0.5 {
		return model.LabelFull, p
	}
	return model.LabelPartial, p
}

// Predict classifies text and returns the label with the probability that
// the text is a full Scope 1/2/3 disclosure.
func (m *Model) Predict(text string) (model.Label, float64) {
	return m.predictVector(m.vectorize(text))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

type checkpoint struct {
	Format    string    `json:"format"`
	Features  string    `json:"features"`
	Buckets   int       `json:"buckets"`
	MaxLength int       `json:"max_length"`
	Bias      float64   `json:"bias"`
	Indices   []uint32  `json:"indices"`
	Weights   []float64 `json:"weights"`
}

// Save writes the model to dir/model.json, storing only non-zero weights.
func (m *Model) Save(dir string) error {
	cp := checkpoint{
		Format:    checkpointFormat,
		Features:  featureSet,
		Buckets:   m.buckets,
		MaxLength: m.maxLength,
		Bias:      m.bias,
	}
	for i, w := range m.weights {
		if w != 0 {
			cp.Indices = append(cp.Indices, uint32(i))
			cp.Weights = append(cp.Weights, w)
		}
	}
	return writeJSON(filepath.Join(dir, ModelFile), cp)
}

// Load reads a model saved by Save. path may be the checkpoint directory or
// the model file itself.
func Load(path string) (*Model, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, ModelFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: read checkpoint %s", path)
	}

	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, eris.Wrapf(err, "classifier: parse checkpoint %s", path)
	}
	if cp.Format != checkpointFormat {
		return nil, eris.Errorf("classifier: unsupported checkpoint format %q", cp.Format)
	}
	if cp.Buckets <= 0 || len(cp.Indices) != len(cp.Weights) {
		return nil, eris.Errorf("classifier: corrupt checkpoint %s", path)
	}

	m := NewModel(cp.Buckets, cp.MaxLength)
	m.bias = cp.Bias
	for i, idx := range cp.Indices {
		if int(idx) >= cp.Buckets {
			return nil, eris.Errorf("classifier: weight index %d out of range in %s", idx, path)
		}
		m.weights[idx] = cp.Weights[i]
	}
	return m, nil
}

// writeJSON replaces path with the JSON encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "classifier: marshal")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "classifier: create %s", dir)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "classifier: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "classifier: rename to %s", path)
	}
	return nil
}
