// AngelaMos | 2026
// repository.go

package medicine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/medassist/internal/core"
)

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetOwned(ctx context.Context, userID, id int64) (*Medicine, error)
	ListByUser(ctx context.Context, userID int64) ([]Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	DeleteOwned(ctx context.Context, userID, id int64) error
}

type repository struct {
	db core.Store
}

func NewRepository(db core.Store) Repository {
	return &repository{db: db}
}

const columns = `id, user_id, name, pharmaceutical_form, concentration,
	active_substance, atc_code, prescription_mode, notes, created_at, updated_at`

func (r *repository) Create(ctx context.Context, m *Medicine) error {
	query := `
		INSERT INTO user_medicines (user_id, name, pharmaceutical_form,
		                            concentration, active_substance, atc_code,
		                            prescription_mode, notes, created_at,
		                            updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryOne(ctx, &m.ID, query,
		m.UserID,
		m.Name,
		m.PharmaceuticalForm,
		m.Concentration,
		m.ActiveSubstance,
		m.ATCCode,
		m.PrescriptionMode,
		m.Notes,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create medicine: %w", err)
	}

	return nil
}

func (r *repository) GetOwned(
	ctx context.Context,
	userID, id int64,
) (*Medicine, error) {
	var m Medicine
	err := r.db.QueryOne(ctx, &m,
		`SELECT `+columns+` FROM user_medicines WHERE id = ? AND user_id = ?`,
		id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get medicine: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get medicine: %w", err)
	}

	return &m, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID int64,
) ([]Medicine, error) {
	items := []Medicine{}
	err := r.db.QueryMany(ctx, &items,
		`SELECT `+columns+` FROM user_medicines
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}

	return items, nil
}

func (r *repository) Update(ctx context.Context, m *Medicine) error {
	query := `
		UPDATE user_medicines
		SET name = ?, pharmaceutical_form = ?, concentration = ?,
		    active_substance = ?, atc_code = ?, prescription_mode = ?,
		    notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.Execute(ctx, query,
		m.Name,
		m.PharmaceuticalForm,
		m.Concentration,
		m.ActiveSubstance,
		m.ATCCode,
		m.PrescriptionMode,
		m.Notes,
		m.UpdatedAt,
		m.ID,
		m.UserID,
	)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}

	return requireAffected(result, "update medicine")
}

func (r *repository) DeleteOwned(ctx context.Context, userID, id int64) error {
	result, err := r.db.Execute(ctx,
		`DELETE FROM user_medicines WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}

	return requireAffected(result, "delete medicine")
}

func requireAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
