// AngelaMos | 2026
// repository.go

package prescription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/medassist/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	ListByUser(ctx context.Context, userID int64) ([]Prescription, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteOwned(ctx context.Context, userID, id int64) error
	DeleteAllOwned(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db core.Store
}

func NewRepository(db core.Store) Repository {
	return &repository{db: db}
}

const columns = `id, user_id, patient_name, medications_json,
	treatment_plans_json, patient_notes, doctor_notes, created_at`

func (r *repository) Create(ctx context.Context, p *Prescription) error {
	query := `
		INSERT INTO prescriptions (user_id, patient_name, medications_json,
		                           treatment_plans_json, patient_notes,
		                           doctor_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryOne(ctx, &p.ID, query,
		p.UserID,
		p.PatientName,
		p.MedicationsJSON,
		p.TreatmentPlansJSON,
		p.PatientNotes,
		p.DoctorNotes,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create prescription: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id int64,
) (*Prescription, error) {
	var p Prescription
	err := r.db.QueryOne(ctx, &p,
		`SELECT `+columns+` FROM prescriptions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get prescription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get prescription: %w", err)
	}

	return &p, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID int64,
) ([]Prescription, error) {
	items := []Prescription{}
	err := r.db.QueryMany(ctx, &items,
		`SELECT `+columns+` FROM prescriptions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}

	return items, nil
}

func (r *repository) CountByUser(
	ctx context.Context,
	userID int64,
) (int64, error) {
	var n int64
	err := r.db.QueryOne(ctx, &n,
		`SELECT COUNT(*) FROM prescriptions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("count prescriptions: %w", err)
	}

	return n, nil
}

func (r *repository) DeleteOwned(ctx context.Context, userID, id int64) error {
	result, err := r.db.Execute(ctx,
		`DELETE FROM prescriptions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete prescription: %w", err)
	}

	return requireAffected(result, "delete prescription")
}

func (r *repository) DeleteAllOwned(
	ctx context.Context,
	userID int64,
) (int64, error) {
	result, err := r.db.Execute(ctx,
		`DELETE FROM prescriptions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete prescriptions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete prescriptions: %w", err)
	}

	return n, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Execute(ctx,
		`DELETE FROM prescriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete prescription: %w", err)
	}

	return requireAffected(result, "delete prescription")
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
