package sql

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataql/strata/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.SQLite, db)

	var slow []string
	stats := NewStatsDriver(drv,
		WithSlowThreshold(0),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)

	mock.ExpectQuery("SELECT name").WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a"))
	rows := &Rows{}
	require.NoError(t, stats.Query(context.Background(), "SELECT name FROM users", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, stats.Exec(context.Background(), "UPDATE users SET age = ?", []any{30}, nil))

	mock.ExpectQuery("SELECT boom").WillReturnError(assert.AnError)
	err = stats.Query(context.Background(), "SELECT boom", []any{}, &Rows{})
	require.Error(t, err)

	s := stats.QueryStats().Stats()
	assert.Equal(t, int64(2), s.TotalQueries)
	assert.Equal(t, int64(1), s.TotalExecs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Positive(t, s.AvgQueryDuration())
	assert.Contains(t, s.String(), "queries=2")
	// Every statement exceeded the zero threshold.
	assert.Len(t, slow, 3)

	stats.QueryStats().Reset()
	s = stats.QueryStats().Stats()
	assert.Zero(t, s.TotalQueries)
	assert.Zero(t, s.Errors)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriverThreshold(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	stats := NewStatsDriver(OpenDB(dialect.SQLite, db))

	assert.Equal(t, 100*time.Millisecond, stats.SlowThreshold())
	stats.SetSlowThreshold(time.Second)
	assert.Equal(t, time.Second, stats.SlowThreshold())
}

func TestStatsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stats := NewStatsDriver(OpenDB(dialect.SQLite, db))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := stats.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "INSERT INTO users DEFAULT VALUES", []any{}, nil))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(1), stats.QueryStats().Stats().TotalExecs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var logged []string
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLog(func(_ context.Context, v ...any) {
		var sb strings.Builder
		for _, x := range v {
			sb.WriteString(x.(string))
		}
		logged = append(logged, sb.String())
	}))

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "DELETE FROM users", []any{}, nil))
	require.NoError(t, tx.Rollback())

	require.Len(t, logged, 4)
	assert.Contains(t, logged[0], "query: SELECT 1")
	assert.Contains(t, logged[1], "begin transaction")
	assert.Contains(t, logged[2], "tx exec: DELETE FROM users")
	assert.Contains(t, logged[3], "rollback transaction")

	require.NoError(t, mock.ExpectationsWereMet())
}
