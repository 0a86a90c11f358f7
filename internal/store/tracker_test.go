package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scope-cli/internal/model"
)

func TestTracker_RecordsPhasesAndRun(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	tr := StartRun(ctx, st, model.StageCollect)
	require.NotEmpty(t, tr.RunID())

	_, err := tr.Phase(ctx, "discover", func() (*model.PhaseResult, error) {
		return &model.PhaseResult{Items: 50}, nil
	})
	require.NoError(t, err)

	_, err = tr.Phase(ctx, "download", func() (*model.PhaseResult, error) {
		return nil, errors.New("disk full")
	})
	require.Error(t, err)

	_, err = tr.Phase(ctx, "extract", func() (*model.PhaseResult, error) {
		return &model.PhaseResult{Status: model.PhaseStatusSkipped}, nil
	})
	require.NoError(t, err)

	tr.SaveReports(ctx, sampleReports())
	tr.Finish(ctx, map[string]int{"reports": 2}, nil)

	phases, err := st.ListPhases(ctx, tr.RunID())
	require.NoError(t, err)
	require.Len(t, phases, 3)
	assert.Equal(t, model.PhaseStatusComplete, phases[0].Status)
	assert.Equal(t, model.PhaseStatusFailed, phases[1].Status)
	assert.Equal(t, "disk full", phases[1].Result.Error)
	assert.Equal(t, model.PhaseStatusSkipped, phases[2].Status)

	run, err := st.GetRun(ctx, tr.RunID())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)

	reports, err := st.ListReports(ctx, tr.RunID())
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	assert.Len(t, tr.Phases(), 3)
}

func TestTracker_NilStore(t *testing.T) {
	ctx := context.Background()
	tr := StartRun(ctx, nil, model.StageLabel)
	assert.Empty(t, tr.RunID())

	res, err := tr.Phase(ctx, "read", func() (*model.PhaseResult, error) {
		return &model.PhaseResult{Items: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "read", res.Name)
	assert.Equal(t, model.PhaseStatusComplete, res.Status)

	tr.SaveReports(ctx, sampleReports())
	tr.Finish(ctx, nil, errors.New("ignored"))
}

func TestTracker_FailedRun(t *testing.T) {
	st := newTestSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())

	tr := StartRun(ctx, st, model.StageTrain)
	cancel()
	tr.Finish(ctx, nil, errors.New("interrupted"))

	run, err := st.GetRun(context.Background(), tr.RunID())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Equal(t, "interrupted", run.Error)
}
