// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/medassist/internal/config"
)

// Store is the parameterized-query boundary every repository is written
// against. Queries use ? placeholders and are rebound for the active dialect.
type Store interface {
	Execute(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryOne(ctx context.Context, dest any, query string, args ...any) error
	QueryMany(ctx context.Context, dest any, query string, args ...any) error
	Dialect() Dialect
}

// TxStore is a Store that can also open a transaction. *Database is the
// only implementation.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type DBTX interface {
	sqlx.ExtContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(
		ctx context.Context,
		dest any,
		query string,
		args ...any,
	) error
}

type store struct {
	db      DBTX
	dialect Dialect
}

func (s *store) Execute(
	ctx context.Context,
	query string,
	args ...any,
) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *store) QueryOne(
	ctx context.Context,
	dest any,
	query string,
	args ...any,
) error {
	return s.db.GetContext(ctx, dest, s.dialect.Rebind(query), args...)
}

func (s *store) QueryMany(
	ctx context.Context,
	dest any,
	query string,
	args ...any,
) error {
	return s.db.SelectContext(ctx, dest, s.dialect.Rebind(query), args...)
}

func (s *store) Dialect() Dialect {
	return s.dialect
}

// Database owns the connection pool. It is built once in main and handed to
// every repository as a Store.
type Database struct {
	DB *sqlx.DB
	store
}

func NewDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
) (*Database, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, dialect.DriverName(), dialect.DSN(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(jitteredDuration(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewDatabaseFromDB(db, dialect), nil
}

// NewDatabaseFromDB wraps an already opened handle. Tests use it with
// sqlmock and temp-file sqlite databases.
func NewDatabaseFromDB(db *sqlx.DB, dialect Dialect) *Database {
	return &Database{
		DB:    db,
		store: store{db: db, dialect: dialect},
	}
}

func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

// InTx runs fn against a Store bound to a single transaction. A returned
// error or panic rolls the transaction back.
func (d *Database) InTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback() //nolint:errcheck // best-effort rollback on panic
			panic(p)
		}
	}()

	if err := fn(&store{db: tx, dialect: d.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// QueryRows runs an arbitrary read statement on a dedicated connection that
// is switched to read-only for the duration of the call. At most maxRows rows
// are collected.
func (d *Database) QueryRows(
	ctx context.Context,
	query string,
	maxRows int,
) ([]map[string]any, error) {
	conn, err := d.DB.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close() //nolint:errcheck // returned to pool

	enter, exit := d.dialect.ReadOnlySession()
	if _, err := conn.ExecContext(ctx, enter); err != nil {
		return nil, fmt.Errorf("enter read-only session: %w", err)
	}

	defer func() {
		resetCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx),
			5*time.Second,
		)
		defer cancel()

		if _, err := conn.ExecContext(resetCtx, exit); err != nil {
			// a connection stuck in read-only mode must not go back to the pool
			_ = conn.Raw(func(any) error { return driver.ErrBadConn }) //nolint:errcheck
		}
	}()

	rows, err := conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	result := make([]map[string]any, 0)
	for rows.Next() {
		if len(result) >= maxRows {
			break
		}

		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

func jitteredDuration(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	//nolint:gosec // G404: non-security-sensitive jitter for connection pool
	jitter := time.Duration(rand.Int64N(int64(base/7) + 1))
	return base + jitter
}
