// AngelaMos | 2026
// testdb.go

package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/migrations"
)

// New opens a migrated sqlite database in a per-test temp directory.
func New(t *testing.T) *core.Database {
	t.Helper()

	dialect := core.SQLite{}
	dsn := dialect.DSN(filepath.Join(t.TempDir(), "medassist.db"))

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db.DB, dialect))

	return core.NewDatabaseFromDB(db, dialect)
}
