package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/model"
)

// Tracker records a stage run and its phases. Ledger write failures are
// logged and never fail the stage. A Tracker over a nil Store only logs.
type Tracker struct {
	st     Store
	run    *model.Run
	log    *zap.Logger
	phases []model.PhaseResult
}

// StartRun creates a run for stage and returns its tracker.
func StartRun(ctx context.Context, st Store, stage model.Stage) *Tracker {
	t := &Tracker{st: st, log: zap.L().With(zap.String("stage", string(stage)))}
	if st == nil {
		return t
	}
	run, err := st.CreateRun(ctx, stage)
	if err != nil {
		t.log.Warn("store: failed to create run", zap.Error(err))
		return t
	}
	t.run = run
	t.log = t.log.With(zap.String("run_id", run.ID))
	return t
}

// RunID returns the run ID, or "" when no run was recorded.
func (t *Tracker) RunID() string {
	if t.run == nil {
		return ""
	}
	return t.run.ID
}

// Phases returns the results of completed phases in order.
func (t *Tracker) Phases() []model.PhaseResult {
	return t.phases
}

// Phase runs fn as a named phase and records its result.
func (t *Tracker) Phase(ctx context.Context, name string, fn func() (*model.PhaseResult, error)) (*model.PhaseResult, error) {
	var phase *model.RunPhase
	if t.run != nil {
		p, err := t.st.CreatePhase(ctx, t.run.ID, name)
		if err != nil {
			t.log.Warn("store: failed to create phase", zap.String("phase", name), zap.Error(err))
		}
		phase = p
	}

	start := time.Now()
	result, fnErr := fn()
	duration := time.Since(start).Milliseconds()

	if result == nil {
		result = &model.PhaseResult{}
	}
	result.Name = name
	result.Duration = duration

	switch {
	case fnErr != nil:
		result.Status = model.PhaseStatusFailed
		result.Error = fnErr.Error()
		t.log.Error("phase failed",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
			zap.Error(fnErr),
		)
	case result.Status == model.PhaseStatusSkipped:
		t.log.Info("phase skipped", zap.String("phase", name))
	default:
		result.Status = model.PhaseStatusComplete
		t.log.Info("phase complete",
			zap.String("phase", name),
			zap.Int("items", result.Items),
			zap.Int64("duration_ms", duration),
		)
	}

	if phase != nil {
		if err := t.st.CompletePhase(ctx, phase.ID, result); err != nil {
			t.log.Warn("store: failed to complete phase", zap.String("phase", name), zap.Error(err))
		}
	}
	t.phases = append(t.phases, *result)
	return result, fnErr
}

// SaveReports records the reports produced by the run.
func (t *Tracker) SaveReports(ctx context.Context, reports []model.Report) {
	if t.run == nil {
		return
	}
	if err := t.st.SaveReports(ctx, t.run.ID, reports); err != nil {
		t.log.Warn("store: failed to save reports", zap.Error(err))
	}
}

// Finish marks the run complete or failed.
func (t *Tracker) Finish(ctx context.Context, stats any, runErr error) {
	if t.run == nil {
		return
	}
	// The stage context may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := t.st.FinishRun(ctx, t.run.ID, stats, runErr); err != nil {
		t.log.Warn("store: failed to finish run", zap.Error(err))
	}
}
