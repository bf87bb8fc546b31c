// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/medassist/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailForUpdate(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	ReplacePasswordHash(ctx context.Context, id int64, oldHash, newHash string) error
	List(ctx context.Context, params ListParams) ([]User, error)
	PurgeOwnedData(ctx context.Context, id int64) (int64, error)
}

// ListParams filters the admin listing. An empty Status means every status.
type ListParams struct {
	Deleted bool
	Status  Status
}

type repository struct {
	db core.Store
}

// NewRepository binds the repository to a Store, which is either the pool
// or a single transaction.
func NewRepository(db core.Store) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password_hash, created_at, status,
	is_admin, approved_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, password_hash, created_at, status,
		                   is_admin, approved_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryOne(ctx, &user.ID, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		string(user.Status),
		user.IsAdmin,
		user.ApprovedAt,
		user.DeletedAt,
	)
	if err != nil {
		if r.db.Dialect().IsDuplicateKey(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "get user",
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *repository) GetByIDForUpdate(
	ctx context.Context,
	id int64,
) (*User, error) {
	return r.getOne(ctx, "get user for update",
		`SELECT `+userColumns+` FROM users WHERE id = ?`+r.db.Dialect().ForUpdate(),
		id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email",
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *repository) GetByEmailForUpdate(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email for update",
		`SELECT `+userColumns+` FROM users WHERE email = ?`+r.db.Dialect().ForUpdate(),
		email)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	arg any,
) (*User, error) {
	var user User
	err := r.db.QueryOne(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// Update writes every mutable column. Email and id never change.
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = ?, password_hash = ?, created_at = ?, status = ?,
		    is_admin = ?, approved_at = ?, deleted_at = ?
		WHERE id = ?`

	result, err := r.db.Execute(ctx, query,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
		string(user.Status),
		user.IsAdmin,
		user.ApprovedAt,
		user.DeletedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return requireAffected(result, "update user")
}

// ReplacePasswordHash swaps the stored hash only if it still equals oldHash,
// so a concurrent password change is never overwritten by a lazy upgrade.
func (r *repository) ReplacePasswordHash(
	ctx context.Context,
	id int64,
	oldHash, newHash string,
) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ? AND password_hash = ?`

	result, err := r.db.Execute(ctx, query, newHash, id, oldHash)
	if err != nil {
		return fmt.Errorf("replace password hash: %w", err)
	}

	return requireAffected(result, "replace password hash")
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL`
	if params.Deleted {
		query = `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NOT NULL`
	}

	args := []any{}
	if params.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(params.Status))
	}

	query += ` ORDER BY created_at DESC, id DESC`

	users := []User{}
	if err := r.db.QueryMany(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// PurgeOwnedData removes everything the user authored: prescriptions and
// custom medicines. It returns the number of prescriptions removed.
func (r *repository) PurgeOwnedData(
	ctx context.Context,
	id int64,
) (int64, error) {
	result, err := r.db.Execute(ctx,
		`DELETE FROM prescriptions WHERE user_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("purge prescriptions: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge prescriptions: %w", err)
	}

	if _, err := r.db.Execute(ctx,
		`DELETE FROM user_medicines WHERE user_id = ?`, id); err != nil {
		return 0, fmt.Errorf("purge custom medicines: %w", err)
	}

	return purged, nil
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
