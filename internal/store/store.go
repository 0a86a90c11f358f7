// Package store persists the run ledger: one row per stage invocation,
// its phases, and the reports a collect run produced.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/scope-cli/internal/model"
)

// ErrNotFound is returned when a run or phase does not exist.
var ErrNotFound = errors.New("not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Stage  model.Stage     `json:"stage,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the pipeline run ledger.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, stage model.Stage) (*model.Run, error)
	// FinishRun marks a run complete, or failed when runErr is non-nil,
	// and records stats as JSON.
	FinishRun(ctx context.Context, runID string, stats any, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error
	ListPhases(ctx context.Context, runID string) ([]model.RunPhase, error)

	// Reports
	SaveReports(ctx context.Context, runID string, reports []model.Report) error
	ListReports(ctx context.Context, runID string) ([]model.Report, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// finishStatus maps a run error to its terminal status and message.
func finishStatus(runErr error) (model.RunStatus, string) {
	if runErr != nil {
		return model.RunStatusFailed, runErr.Error()
	}
	return model.RunStatusComplete, ""
}

func listLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
