// AngelaMos | 2026
// migrations_test.go

package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/migrations"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	dialect := core.SQLite{}
	db, err := sql.Open(
		dialect.DriverName(),
		dialect.DSN(filepath.Join(t.TempDir(), "app.db")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		name,
	).Scan(&n)
	require.NoError(t, err)

	return n > 0
}

func TestUp_CreatesSchema(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, migrations.Up(context.Background(), db, core.SQLite{}))

	for _, table := range []string{
		"users",
		"prescriptions",
		"medications",
		"user_medicines",
		"goose_db_version",
	} {
		assert.True(t, tableExists(t, db, table), "missing table %s", table)
	}
}

func TestUp_IsIdempotent(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, migrations.Up(ctx, db, core.SQLite{}))
	require.NoError(t, migrations.Up(ctx, db, core.SQLite{}))
}

func TestUp_EnforcesStatusValues(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, migrations.Up(context.Background(), db, core.SQLite{}))

	_, err := db.Exec(
		`INSERT INTO users (name, email, password_hash, created_at, status)
		 VALUES ('x', 'x@example.com', 'h', CURRENT_TIMESTAMP, 'archived')`,
	)
	assert.Error(t, err)
}

func TestUp_CascadesPrescriptionsOnUserRemoval(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, migrations.Up(context.Background(), db, core.SQLite{}))

	res, err := db.Exec(
		`INSERT INTO users (name, email, password_hash, created_at)
		 VALUES ('x', 'x@example.com', 'h', CURRENT_TIMESTAMP)`,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO prescriptions (user_id, created_at) VALUES (?, CURRENT_TIMESTAMP)`,
		id,
	)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM users WHERE id = ?`, id)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM prescriptions`).Scan(&n))
	assert.Zero(t, n)
}
