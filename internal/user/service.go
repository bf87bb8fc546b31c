// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/metrics"
)

type Service struct {
	db     core.TxStore
	policy Policy
	now    func() time.Time
}

func NewService(db core.TxStore, policy Policy) *Service {
	if policy.MinPasswordLength < 1 {
		policy.MinPasswordLength = 6
	}
	policy.AdminEmail = NormalizeEmail(policy.AdminEmail)

	return &Service{
		db:     db,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) checkPassword(password string) error {
	if len(password) < s.policy.MinPasswordLength {
		return core.ValidationError(fmt.Sprintf(
			"password must be at least %d characters",
			s.policy.MinPasswordLength,
		))
	}
	return nil
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.Signup")
	var err error
	defer func() { core.EndSpan(span, err) }()

	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		err = core.ValidationError("name, email and password are required")
		return nil, err
	}
	if err = s.checkPassword(req.Password); err != nil {
		return nil, err
	}

	repo := NewRepository(s.db)

	existing, lookupErr := repo.GetByEmail(ctx, email)
	switch {
	case lookupErr == nil && existing.IsDeleted():
		err = fmt.Errorf("signup: %w", ErrAccountDeleted)
		return nil, err
	case lookupErr == nil:
		err = fmt.Errorf("signup: %w", ErrEmailTaken)
		return nil, err
	case !errors.Is(lookupErr, core.ErrNotFound):
		err = fmt.Errorf("signup: %w", lookupErr)
		return nil, err
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	now := s.now()
	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	s.policy.ApplySignupRule(u, now)

	if err = repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			err = s.classifyDuplicate(ctx, repo, email)
		}
		return nil, err
	}

	metrics.ObserveAccountTransition("signup")
	slog.InfoContext(ctx, "account created",
		"user_id", u.ID,
		"status", u.Status,
		"is_admin", u.IsAdmin,
	)

	return u, nil
}

// classifyDuplicate resolves a unique-key race on insert into the same
// conflict the pre-check would have reported.
func (s *Service) classifyDuplicate(
	ctx context.Context,
	repo Repository,
	email string,
) error {
	existing, err := repo.GetByEmail(ctx, email)
	if err == nil && existing.IsDeleted() {
		return fmt.Errorf("signup: %w", ErrAccountDeleted)
	}
	return fmt.Errorf("signup: %w", ErrEmailTaken)
}

// Login verifies credentials. A soft-deleted account is reported before any
// password check so the client can offer recovery.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.Login")
	var err error
	defer func() { core.EndSpan(span, err) }()

	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		err = core.ValidationError("email and password are required")
		return nil, err
	}

	repo := NewRepository(s.db)

	u, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		//nolint:errcheck // result discarded, runs only to equalise timing
		_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
		metrics.ObserveLogin("invalid")
		return nil, fmt.Errorf("login: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if u.IsDeleted() {
		metrics.ObserveLogin("deleted")
		return nil, fmt.Errorf("login: %w", ErrAccountDeleted)
	}

	stored := u.PasswordHash
	valid, newHash, verifyErr := core.VerifyPasswordTimingSafe(req.Password, &stored)
	if verifyErr != nil && !valid {
		slog.ErrorContext(ctx, "stored credential unreadable",
			"user_id", u.ID,
			"error", verifyErr,
		)
		metrics.ObserveLogin("invalid")
		return nil, fmt.Errorf("login: %w", ErrInvalidCredentials)
	}
	if !valid {
		metrics.ObserveLogin("invalid")
		return nil, fmt.Errorf("login: %w", ErrInvalidCredentials)
	}
	if verifyErr != nil {
		err = fmt.Errorf("login: %w", verifyErr)
		return nil, err
	}

	if newHash != "" {
		if err = repo.ReplacePasswordHash(ctx, u.ID, stored, newHash); err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf("login: %w", err)
			}
			err = nil
		} else {
			scheme := core.DetectScheme(stored).String()
			metrics.ObserveCredentialUpgrade(scheme)
			core.AddSpanEvent(ctx, "credential upgraded",
				attribute.String("from", scheme))
			u.PasswordHash = newHash
		}
	}

	metrics.ObserveLogin("success")
	return u, nil
}

// GetActive returns the user only while it is not soft-deleted.
func (s *Service) GetActive(ctx context.Context, id int64) (*User, error) {
	u, err := NewRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}

	return u, nil
}

func (s *Service) GetMe(ctx context.Context, id int64) (*User, error) {
	return s.GetActive(ctx, id)
}

func (s *Service) SelfDelete(ctx context.Context, id int64) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.SelfDelete",
		attribute.Int64("user.id", id))
	var result *User

	err := s.db.InTx(ctx, func(tx core.Store) error {
		repo := NewRepository(tx)

		u, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if u.IsDeleted() {
			return fmt.Errorf("self delete: %w", ErrAlreadyDeleted)
		}

		now := s.now()
		u.DeletedAt = &now

		if err := repo.Update(ctx, u); err != nil {
			return err
		}

		result = u
		return nil
	})
	core.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	metrics.ObserveAccountTransition("self_delete")
	slog.InfoContext(ctx, "account self-deleted", "user_id", id)

	return result, nil
}

// Recover brings back a soft-deleted account. Mode restore keeps the
// account as it was; mode new resets it as if it had just signed up and
// removes everything it owned.
func (s *Service) Recover(ctx context.Context, req RecoverRequest) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.Recover",
		attribute.String("mode", req.Mode))
	var err error
	defer func() { core.EndSpan(span, err) }()

	email := NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	switch {
	case email == "" || req.Password == "":
		err = core.ValidationError("email and password are required")
	case req.Mode != RecoverRestore && req.Mode != RecoverNew:
		err = core.ValidationError("mode must be restore or new")
	case req.Mode == RecoverNew && name == "":
		err = core.ValidationError("name is required to create a new account")
	default:
		err = s.checkPassword(req.Password)
	}
	if err != nil {
		return nil, err
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("recover: %w", err)
	}

	var (
		result *User
		purged int64
	)

	err = s.db.InTx(ctx, func(tx core.Store) error {
		repo := NewRepository(tx)

		u, err := repo.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return fmt.Errorf("recover: %w", err)
		}

		if !u.IsDeleted() {
			return fmt.Errorf("recover: no deleted account: %w", core.ErrNotFound)
		}

		u.DeletedAt = nil
		u.PasswordHash = hash

		if req.Mode == RecoverNew {
			now := s.now()
			u.Name = name
			u.CreatedAt = now
			s.policy.ApplySignupRule(u, now)

			purged, err = repo.PurgeOwnedData(ctx, u.ID)
			if err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, u); err != nil {
			return err
		}

		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveAccountTransition("recover_" + req.Mode)
	slog.InfoContext(ctx, "account recovered",
		"user_id", result.ID,
		"mode", req.Mode,
		"prescriptions_purged", purged,
	)

	return result, nil
}

// EnsureAdmin makes sure the distinguished administrator exists, is active,
// approved and flagged admin. An account that is already in that state is
// left untouched, including its password.
func (s *Service) EnsureAdmin(ctx context.Context, name, password string) error {
	if s.policy.AdminEmail == "" || password == "" {
		return nil
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	return s.db.InTx(ctx, func(tx core.Store) error {
		repo := NewRepository(tx)
		now := s.now()

		u, err := repo.GetByEmailForUpdate(ctx, s.policy.AdminEmail)
		if errors.Is(err, core.ErrNotFound) {
			u = &User{
				Name:         name,
				Email:        s.policy.AdminEmail,
				PasswordHash: hash,
				CreatedAt:    now,
			}
			s.policy.ApplySignupRule(u, now)

			if err := repo.Create(ctx, u); err != nil {
				return fmt.Errorf("ensure admin: %w", err)
			}

			slog.InfoContext(ctx, "admin account seeded", "user_id", u.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}

		if u.IsAdmin && u.IsApproved() && !u.IsDeleted() {
			return nil
		}

		u.IsAdmin = true
		u.DeletedAt = nil
		u.PasswordHash = hash
		u.SetStatus(StatusApproved, now)

		if err := repo.Update(ctx, u); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}

		slog.InfoContext(ctx, "admin account repaired", "user_id", u.ID)
		return nil
	})
}
