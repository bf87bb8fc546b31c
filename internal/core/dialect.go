// AngelaMos | 2026
// dialect.go

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/carterperez-dev/medassist/internal/config"
)

// Dialect captures what differs between the embedded and the managed engine.
type Dialect interface {
	Name() string
	DriverName() string
	// GooseDialect is the dialect string pressly/goose expects.
	GooseDialect() string
	DSN(url string) string
	Rebind(query string) string
	// ForUpdate is appended to a SELECT that must lock the row it reads.
	ForUpdate() string
	IsDuplicateKey(err error) bool
	ReadOnlySession() (enter, exit string)
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return SQLite{}, nil
	case config.DriverPostgres:
		return Postgres{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type SQLite struct{}

func (SQLite) Name() string         { return config.DriverSQLite }
func (SQLite) DriverName() string   { return "sqlite" }
func (SQLite) GooseDialect() string { return "sqlite3" }
func (SQLite) ForUpdate() string    { return "" }

// DSN adds the pragmas the service relies on unless the caller already set
// its own. _txlock=immediate takes the write lock at BEGIN so read-then-write
// transactions serialize instead of failing on lock upgrade.
func (SQLite) DSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}

	dsn := url
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + strings.Join([]string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_txlock=immediate",
		"_time_format=sqlite",
	}, "&")
}

func (SQLite) Rebind(query string) string {
	return sqlx.Rebind(sqlx.QUESTION, query)
}

func (SQLite) IsDuplicateKey(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func (SQLite) ReadOnlySession() (string, string) {
	return "PRAGMA query_only = ON", "PRAGMA query_only = OFF"
}

type Postgres struct{}

func (Postgres) Name() string         { return config.DriverPostgres }
func (Postgres) DriverName() string   { return "pgx" }
func (Postgres) GooseDialect() string { return "postgres" }
func (Postgres) DSN(url string) string {
	return url
}
func (Postgres) ForUpdate() string { return " FOR UPDATE" }

func (Postgres) Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func (Postgres) IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (Postgres) ReadOnlySession() (string, string) {
	return "SET SESSION CHARACTERISTICS AS TRANSACTION READ ONLY",
		"SET SESSION CHARACTERISTICS AS TRANSACTION READ WRITE"
}
