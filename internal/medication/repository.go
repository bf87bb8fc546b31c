// AngelaMos | 2026
// repository.go

package medication

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/medassist/internal/core"
)

type Repository interface {
	Search(ctx context.Context, params SearchParams) ([]Medication, error)
	GetByID(ctx context.Context, id int64) (*Medication, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db core.Store
}

func NewRepository(db core.Store) Repository {
	return &repository{db: db}
}

const columns = `id, name, active_substance, compensation_list, code,
	pharmaceutical_form, atc_code, prescription_mode, concentration, packaging,
	holder_name, holder_country, quantity_per_package, max_price_package,
	max_price_unit, contribution_max_100, contribution_max_90_50_20,
	contribution_max_pensioners_90, age_category, disease_codes`

// Search matches name, active substance and code case-insensitively.
func (r *repository) Search(
	ctx context.Context,
	params SearchParams,
) ([]Medication, error) {
	query := `SELECT ` + columns + ` FROM medications`
	args := []any{}

	if params.Search != "" {
		query += ` WHERE LOWER(name) LIKE ?
		              OR LOWER(active_substance) LIKE ?
		              OR LOWER(code) LIKE ?`
		like := "%" + strings.ToLower(params.Search) + "%"
		args = append(args, like, like, like)
	}

	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset)

	items := []Medication{}
	if err := r.db.QueryMany(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("search medications: %w", err)
	}

	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Medication, error) {
	var m Medication
	err := r.db.QueryOne(ctx, &m,
		`SELECT `+columns+` FROM medications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get medication: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get medication: %w", err)
	}

	return &m, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryOne(ctx, &n, `SELECT COUNT(*) FROM medications`); err != nil {
		return 0, fmt.Errorf("count medications: %w", err)
	}
	return n, nil
}
