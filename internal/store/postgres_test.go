package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scope-cli/internal/model"
)

var runColumns = []string{"id", "stage", "status", "stats", "error", "created_at", "updated_at"}

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "collect", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.StageCollect)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.StageCollect, run.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FinishRun_Failed(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, stats = \$2, error = \$3`).
		WithArgs("failed", pgxmock.AnyArg(), "no reports found", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FinishRun(context.Background(), "run-1", map[string]int{"reports": 0}, errors.New("no reports found"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FinishRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs`).
		WithArgs("complete", pgxmock.AnyArg(), "", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.FinishRun(context.Background(), "missing", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, stage, status, stats, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(runColumns).
			AddRow("run-1", "train", "complete", []byte(`{"f1":0.82}`), "", now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.StageTrain, run.Stage)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.JSONEq(t, `{"f1":0.82}`, string(run.Stats))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, stage, status, stats, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`AND stage = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("label", "complete", 10, 5).
		WillReturnRows(pgxmock.NewRows(runColumns).
			AddRow("run-2", "label", "complete", []byte(`{"rows":30}`), "", now, now).
			AddRow("run-1", "label", "complete", []byte(`{"rows":25}`), "", now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{
		Stage:  model.StageLabel,
		Status: model.RunStatusComplete,
		Limit:  10,
		Offset: 5,
	})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, stage`).
		WithArgs(100).
		WillReturnError(fmt.Errorf("connection lost"))

	_, err := s.ListRuns(context.Background(), RunFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: list runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompletePhase_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE run_phases SET status = \$1, result = \$2 WHERE id = \$3`).
		WithArgs("complete", pgxmock.AnyArg(), "phase-x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompletePhase(context.Background(), "phase-x", &model.PhaseResult{Status: model.PhaseStatusComplete})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReports(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"reports"}, reportColumns).WillReturnResult(2)

	require.NoError(t, s.SaveReports(context.Background(), "run-1", sampleReports()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReports_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"reports"}, reportColumns).WillReturnError(fmt.Errorf("copy failed"))

	err := s.SaveReports(context.Background(), "run-1", sampleReports())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save reports for run run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT company, exchange, year, url, pdf_path, text_path FROM reports WHERE run_id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"company", "exchange", "year", "url", "pdf_path", "text_path"}).
			AddRow("Apple Inc", "NASDAQ", 2023, "https://example.com/a.pdf", "data/pdfs/Apple Inc_2023.pdf", "data/texts/Apple Inc_2023.txt"))

	reports, err := s.ListReports(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, model.ExchangeNASDAQ, reports[0].Exchange)
	assert.Equal(t, 2023, reports[0].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}
