// AngelaMos | 2026
// migrations.go

package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/carterperez-dev/medassist/internal/core"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Up applies every pending migration for the dialect. It uses a goose
// provider rather than the package-level goose state so parallel test
// databases do not share configuration.
func Up(ctx context.Context, db *sql.DB, dialect core.Dialect) error {
	fsys, err := fs.Sub(files, dialect.Name())
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", dialect.Name(), err)
	}

	provider, err := goose.NewProvider(
		goose.Dialect(dialect.GooseDialect()),
		db,
		fsys,
	)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		slog.Debug("migration applied",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}

	return nil
}
