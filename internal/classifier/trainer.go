// Package classifier trains and serves the Scope 3 disclosure classifier: a
// logistic regression over hashed unigram and bigram features, optimized
// with AdamW.
package classifier

import (
	"context"
	"math"
	"math/rand/v2"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/config"
	"github.com/sells-group/scope-cli/internal/dataset"
	"github.com/sells-group/scope-cli/internal/model"
	"github.com/sells-group/scope-cli/internal/store"
)

var (
	// ErrSingleClass is returned when training rows do not contain both labels.
	ErrSingleClass = eris.New("classifier: training data needs both labels")
	// ErrNoValidation is returned when no validation rows are available.
	ErrNoValidation = eris.New("classifier: validation data required")
)

const (
	maxGradNorm = 1.0
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// EpochResult records one training epoch.
type EpochResult struct {
	Epoch      int     `json:"epoch"`
	Step       int     `json:"step"`
	Loss       float64 `json:"loss"`
	Validation Metrics `json:"validation"`
	Saved      bool    `json:"saved"`
}

// TrainerState is written next to the best checkpoint.
type TrainerState struct {
	BestF1       float64       `json:"best_f1"`
	BestEpoch    int           `json:"best_epoch"`
	GlobalStep   int           `json:"global_step"`
	ClassWeights [2]float64    `json:"class_weights"`
	BatchSize    int           `json:"batch_size"`
	LearningRate float64       `json:"learning_rate"`
	WeightDecay  float64       `json:"weight_decay"`
	Seed         int64         `json:"seed"`
	BaseModel    string        `json:"base_model,omitempty"`
	History      []EpochResult `json:"log_history"`
}

// Result is the outcome of training.
type Result struct {
	RunID   string        `json:"run_id,omitempty"`
	Model   *Model        `json:"-"`
	Final   Metrics       `json:"final"`
	Summary Summary       `json:"summary"`
	State   *TrainerState `json:"state"`
	// Saved reports whether any epoch improved validation F1 and wrote a
	// checkpoint.
	Saved bool `json:"saved"`
}

// Trainer fits a Model to a labeled dataset.
type Trainer struct {
	cfg   config.TrainConfig
	store store.Store
}

// NewTrainer creates a Trainer. st may be nil to skip the run ledger.
func NewTrainer(cfg config.TrainConfig, st store.Store) *Trainer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 3
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.05
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 512
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./model"
	}
	return &Trainer{cfg: cfg, store: st}
}

// ClassWeights returns n/(2*count) for each label, so both classes carry
// equal total weight.
func ClassWeights(rows []model.DatasetRow) ([2]float64, error) {
	var counts [2]int
	for _, r := range rows {
		counts[bin(r.Label)]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return [2]float64{}, eris.Wrapf(ErrSingleClass, "label 0: %d, label 1: %d", counts[0], counts[1])
	}
	n := float64(len(rows))
	return [2]float64{n / (2 * float64(counts[0])), n / (2 * float64(counts[1]))}, nil
}

// Train fits a model on train, evaluating on val after every epoch. The
// model is checkpointed to the configured directory whenever validation F1
// improves on the best so far. Final metrics come from the model as it
// stands after the last epoch.
func (t *Trainer) Train(ctx context.Context, train, val []model.DatasetRow) (*Result, error) {
	if len(val) == 0 {
		return nil, ErrNoValidation
	}
	weights, err := ClassWeights(train)
	if err != nil {
		return nil, err
	}

	m, err := t.initialModel()
	if err != nil {
		return nil, err
	}

	xs := make([]vector, len(train))
	for i, r := range train {
		xs[i] = m.vectorize(r.TextExcerpt)
	}
	valXs := make([]vector, len(val))
	for i, r := range val {
		valXs[i] = m.vectorize(r.TextExcerpt)
	}
	valLabels := labels(val)

	n := len(train)
	bs := t.cfg.BatchSize
	batches := (n + bs - 1) / bs
	total := batches * t.cfg.Epochs
	zap.L().Info("classifier: training",
		zap.Int("train_rows", n),
		zap.Int("val_rows", len(val)),
		zap.Float64s("class_weights", weights[:]),
		zap.Int("steps", total),
	)

	rng := rand.New(rand.NewPCG(uint64(t.cfg.Seed), uint64(t.cfg.Seed)))
	opt := newAdamW(m.buckets+1, t.cfg.WeightDecay)
	grad := make([]float64, m.buckets+1)

	state := &TrainerState{
		ClassWeights: weights,
		BatchSize:    bs,
		LearningRate: t.cfg.LearningRate,
		WeightDecay:  t.cfg.WeightDecay,
		Seed:         t.cfg.Seed,
		BaseModel:    t.cfg.BaseModel,
	}
	res := &Result{Model: m, State: state}

	step := 0
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		perm := rng.Perm(n)
		var lossSum float64
		for b := range batches {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "classifier: training interrupted")
			}
			idx := perm[b*bs : min((b+1)*bs, n)]
			lossSum += batchGradient(m, xs, train, idx, weights, grad)
			clipNorm(grad, maxGradNorm)
			lr := t.cfg.LearningRate * float64(total-step) / float64(total)
			opt.step(m, grad, lr)
			step++
		}

		metrics := evaluate(m, valXs, valLabels)
		er := EpochResult{Epoch: epoch, Step: step, Loss: lossSum / float64(batches), Validation: metrics}
		if metrics.F1 > state.BestF1 {
			state.BestF1 = metrics.F1
			state.BestEpoch = epoch
			er.Saved = true
		}
		state.GlobalStep = step
		state.History = append(state.History, er)

		zap.L().Info("classifier: epoch complete",
			zap.Int("epoch", epoch),
			zap.Float64("loss", er.Loss),
			zap.Float64("accuracy", metrics.Accuracy),
			zap.Float64("precision", metrics.Precision),
			zap.Float64("recall", metrics.Recall),
			zap.Float64("f1", metrics.F1),
		)

		if er.Saved {
			if err := t.checkpoint(m, state); err != nil {
				return nil, err
			}
			res.Saved = true
			zap.L().Info("classifier: checkpoint saved", zap.String("dir", t.cfg.ModelDir), zap.Float64("f1", metrics.F1))
		}
	}
	if !res.Saved {
		zap.L().Warn("classifier: validation f1 never improved above 0; no checkpoint saved")
	}

	res.Final = evaluate(m, valXs, valLabels)
	res.Summary = NewSummary(train, res.Final)
	return res, nil
}

func (t *Trainer) initialModel() (*Model, error) {
	if t.cfg.BaseModel == "" {
		return NewModel(DefaultBuckets, t.cfg.MaxLength), nil
	}
	m, err := Load(t.cfg.BaseModel)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: load base model")
	}
	m.maxLength = t.cfg.MaxLength
	zap.L().Info("classifier: warm start", zap.String("base_model", t.cfg.BaseModel))
	return m, nil
}

func (t *Trainer) checkpoint(m *Model, state *TrainerState) error {
	if err := m.Save(t.cfg.ModelDir); err != nil {
		return err
	}
	return writeJSON(filepath.Join(t.cfg.ModelDir, StateFile), state)
}

// batchGradient fills grad with the class-weighted mean log-loss gradient
// over the rows in idx and returns the batch loss. The bias gradient is the
// last element.
func batchGradient(m *Model, xs []vector, rows []model.DatasetRow, idx []int, weights [2]float64, grad []float64) float64 {
	clear(grad)
	biasIdx := len(grad) - 1
	var loss, wsum float64
	for _, i := range idx {
		y := float64(bin(rows[i].Label))
		w := weights[bin(rows[i].Label)]
		p := sigmoid(m.logit(xs[i]))
		g := w * (p - y)
		for _, f := range xs[i] {
			grad[f.index] += g * f.value
		}
		grad[biasIdx] += g
		loss += w * logLoss(p, y)
		wsum += w
	}
	for j := range grad {
		grad[j] /= wsum
	}
	return loss / wsum
}

func logLoss(p, y float64) float64 {
	const eps = 1e-12
	p = min(max(p, eps), 1-eps)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// clipNorm rescales g so its L2 norm is at most maxNorm.
func clipNorm(g []float64, maxNorm float64) {
	var sq float64
	for _, v := range g {
		sq += v * v
	}
	norm := math.Sqrt(sq)
	if norm <= maxNorm {
		return
	}
	scale := maxNorm / norm
	for i := range g {
		g[i] *= scale
	}
}

// adamW holds optimizer moments for the weights followed by the bias.
type adamW struct {
	m, v        []float64
	t           int
	weightDecay float64
}

func newAdamW(size int, weightDecay float64) *adamW {
	return &adamW{m: make([]float64, size), v: make([]float64, size), weightDecay: weightDecay}
}

// step applies one AdamW update. Decoupled weight decay shrinks every
// weight, including those with no gradient yet, and is not applied to the
// bias.
func (o *adamW) step(mdl *Model, grad []float64, lr float64) {
	o.t++
	c1 := 1 - math.Pow(adamBeta1, float64(o.t))
	c2 := 1 - math.Pow(adamBeta2, float64(o.t))
	biasIdx := len(grad) - 1
	for j, g := range grad {
		if j != biasIdx {
			mdl.weights[j] -= lr * o.weightDecay * mdl.weights[j]
		}
		o.m[j] = adamBeta1*o.m[j] + (1-adamBeta1)*g
		o.v[j] = adamBeta2*o.v[j] + (1-adamBeta2)*g*g
		if o.m[j] == 0 {
			continue
		}
		update := lr * (o.m[j] / c1) / (math.Sqrt(o.v[j]/c2) + adamEpsilon)
		if j == biasIdx {
			mdl.bias -= update
			continue
		}
		mdl.weights[j] -= update
	}
}

// Run trains on the configured dataset and validation files.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	if t.cfg.ValidationPath == "" {
		return nil, eris.Wrap(ErrNoValidation, "set train.validation_path or --validation")
	}
	tr := store.StartRun(ctx, t.store, model.StageTrain)

	var train, val []model.DatasetRow
	_, err := tr.Phase(ctx, "load", func() (*model.PhaseResult, error) {
		var err error
		if train, _, err = dataset.Read(t.cfg.DatasetPath); err != nil {
			return nil, err
		}
		if val, _, err = dataset.Read(t.cfg.ValidationPath); err != nil {
			return nil, err
		}
		ts, vs := dataset.Summarize(train), dataset.Summarize(val)
		zap.L().Info("classifier: loaded datasets",
			zap.Int("train_rows", ts.Rows), zap.Int("train_label_0", ts.Label0), zap.Int("train_label_1", ts.Label1),
			zap.Int("val_rows", vs.Rows), zap.Int("val_label_0", vs.Label0), zap.Int("val_label_1", vs.Label1),
		)
		return &model.PhaseResult{Items: len(train) + len(val)}, nil
	})

	var res *Result
	if err == nil {
		_, err = tr.Phase(ctx, "train", func() (*model.PhaseResult, error) {
			var err error
			res, err = t.Train(ctx, train, val)
			if err != nil {
				return nil, err
			}
			return &model.PhaseResult{
				Items:    res.State.GlobalStep,
				Metadata: map[string]any{"best_f1": res.State.BestF1, "best_epoch": res.State.BestEpoch},
			}, nil
		})
	}

	var stats any
	if res != nil {
		stats = res.Summary
		res.RunID = tr.RunID()
	}
	tr.Finish(ctx, stats, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}
