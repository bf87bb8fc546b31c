// AngelaMos | 2026
// database_test.go

package core_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/testdb"
)

func newMockDatabase(t *testing.T, dialect core.Dialect) (*core.Database, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	return core.NewDatabaseFromDB(sqlx.NewDb(mockDB, "sqlmock"), dialect), mock
}

func TestStore_RebindsForPostgres(t *testing.T) {
	db, mock := newMockDatabase(t, core.Postgres{})

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET name = $1 WHERE id = $2`)).
		WithArgs("Ana", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := db.Execute(context.Background(),
		`UPDATE users SET name = ? WHERE id = ?`, "Ana", int64(7))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryOnePropagatesNoRows(t *testing.T) {
	db, mock := newMockDatabase(t, core.SQLite{})

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM users WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	var name string
	err := db.QueryOne(context.Background(), &name,
		`SELECT name FROM users WHERE id = ?`, int64(1))
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestInTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDatabase(t, core.SQLite{})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM prescriptions WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.InTx(context.Background(), func(tx core.Store) error {
		_, err := tx.Execute(context.Background(),
			`DELETE FROM prescriptions WHERE id = ?`, int64(3))
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, mock := newMockDatabase(t, core.SQLite{})
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.InTx(context.Background(), func(core.Store) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnPanic(t *testing.T) {
	db, mock := newMockDatabase(t, core.SQLite{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = db.InTx(context.Background(), func(core.Store) error {
			panic("kaboom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginFailure(t *testing.T) {
	db, mock := newMockDatabase(t, core.SQLite{})

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	called := false
	err := db.InTx(context.Background(), func(core.Store) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestQueryRows_ReturnsMapsAndCapsRows(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	for _, name := range []string{"Paracetamol", "Ibuprofen", "Aspirin"} {
		_, err := db.Execute(ctx, `INSERT INTO medications (name) VALUES (?)`, name)
		require.NoError(t, err)
	}

	rows, err := db.QueryRows(ctx, `SELECT id, name FROM medications ORDER BY id`, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Paracetamol", rows[0]["name"])
	assert.Equal(t, "Ibuprofen", rows[1]["name"])
}

func TestQueryRows_IsReadOnly(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	_, err := db.QueryRows(ctx, `INSERT INTO medications (name) VALUES ('x') RETURNING id`, 10)
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryOne(ctx, &n, `SELECT COUNT(*) FROM medications`))
	assert.Zero(t, n)

	_, err = db.Execute(ctx, `INSERT INTO medications (name) VALUES ('y')`)
	require.NoError(t, err, "pool connections must be writable again")
}
