package sql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/supaq/dialect"
)

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "ada"))
	mock.ExpectClose()

	rows := &Rows{}
	err = drv.Query(
		context.Background(),
		"SELECT * FROM users WHERE id = :id_0",
		map[string]any{"id_0": 5},
		rows,
	)
	require.NoError(t, err)
	out, err := ScanMaps(rows)
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.Len(t, out, 1)
	assert.Equal(t, "ada", out[0]["name"])

	require.NoError(t, drv.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name) VALUES ($1)")).
		WithArgs("ada").
		WillReturnResult(sqlmock.NewResult(0, 1))

	var res Result
	err = drv.Exec(
		context.Background(),
		"INSERT INTO users (name) VALUES (:name)",
		map[string]any{"name": "ada"},
		&res,
	)
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverExecNilResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 3))

	err = drv.Exec(context.Background(), "DELETE FROM users", map[string]any{}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverBadArgs(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	// args must be the builder's parameter map.
	err = drv.Exec(context.Background(), "DELETE FROM users", []any{}, nil)
	require.Error(t, err)

	rows := &Rows{}
	err = drv.Query(context.Background(), "SELECT 1", []any{}, rows)
	require.Error(t, err)

	// Unbound placeholders fail at bind time, before the database is touched.
	err = drv.Query(context.Background(), "SELECT :missing", map[string]any{}, rows)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = $1")).
		WithArgs("grace").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	err = tx.Exec(
		context.Background(),
		"UPDATE users SET name = :name",
		map[string]any{"name": "grace"},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithVars(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	mock.ExpectExec("SET app.tenant = 'acme'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET app.tenant").WillReturnResult(sqlmock.NewResult(0, 0))

	rows := &Rows{}
	err = drv.Query(
		WithVar(context.Background(), "app.tenant", "acme"),
		"SELECT 1",
		map[string]any{},
		rows,
	)
	require.NoError(t, err)
	require.NoError(t, rows.Close(), "rows should be closed to release the connection")
	require.NoError(t, mock.ExpectationsWereMet())

	// Values with quotes are escaped before inlining into SET.
	mock.ExpectExec("SET app.tenant = 'o''brien'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO users DEFAULT VALUES").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RESET app.tenant").WillReturnResult(sqlmock.NewResult(0, 0))
	err = drv.Exec(
		WithVar(context.Background(), "app.tenant", "o'brien"),
		"INSERT INTO users DEFAULT VALUES",
		map[string]any{},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// Invalid variable names are rejected before any statement runs.
	err = drv.Exec(
		WithVar(context.Background(), "app.tenant; DROP", "x"),
		"SELECT 1",
		map[string]any{},
		nil,
	)
	require.Error(t, err)
}

func TestVarFromContext(t *testing.T) {
	t.Parallel()

	ctx := WithVar(context.Background(), "app.tenant", "acme")
	v, ok := VarFromContext(ctx, "app.tenant")
	require.True(t, ok)
	assert.Equal(t, "acme", v)

	_, ok = VarFromContext(ctx, "app.role")
	assert.False(t, ok)
}

func TestScanMaps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)
	defer drv.Close()

	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, []byte("ada")).
			AddRow(2, []byte("grace")))

	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id, name FROM users", map[string]any{}, rows))
	out, err := ScanMaps(rows)
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.Len(t, out, 2)
	assert.Equal(t, "ada", out[0]["name"], "byte slices are converted to strings")
	assert.Equal(t, "grace", out[1]["name"])
}
