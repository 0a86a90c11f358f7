package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportColumns = []string{"run_id", "company", "exchange", "year"}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "reports", reportColumns, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"reports"}, reportColumns).WillReturnResult(2)

	rows := [][]any{
		{"run-1", "Apple Inc", "NASDAQ", 2023},
		{"run-1", "Chevron Corporation", "NYSE", 2022},
	}
	n, err := CopyFrom(context.Background(), mock, "reports", reportColumns, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"reports"}, reportColumns).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "reports", reportColumns, [][]any{{"run-1", "Apple Inc", "NASDAQ", 2023}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: COPY INTO reports")
	assert.NoError(t, mock.ExpectationsWereMet())
}
