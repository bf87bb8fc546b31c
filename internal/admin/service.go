// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/medassist/internal/config"
	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/metrics"
	"github.com/carterperez-dev/medassist/internal/prescription"
	"github.com/carterperez-dev/medassist/internal/user"
)

// QueryRunner executes a read-only statement. *core.Database satisfies it.
type QueryRunner interface {
	QueryRows(ctx context.Context, query string, maxRows int) ([]map[string]any, error)
}

type Service struct {
	db            core.TxStore
	guard         *Guard
	policy        user.Policy
	prescriptions *prescription.Service
	runner        QueryRunner
	query         config.QueryConfig
	now           func() time.Time
}

type ServiceConfig struct {
	DB            core.TxStore
	Policy        user.Policy
	Prescriptions *prescription.Service
	Runner        QueryRunner
	Query         config.QueryConfig
}

func NewService(cfg ServiceConfig) *Service {
	cfg.Policy.AdminEmail = user.NormalizeEmail(cfg.Policy.AdminEmail)
	if cfg.Query.MaxRows <= 0 {
		cfg.Query.MaxRows = 5000
	}
	if cfg.Query.Timeout <= 0 {
		cfg.Query.Timeout = 10 * time.Second
	}

	return &Service{
		db:            cfg.DB,
		guard:         NewGuard(cfg.DB),
		policy:        cfg.Policy,
		prescriptions: cfg.Prescriptions,
		runner:        cfg.Runner,
		query:         cfg.Query,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Guard() *Guard {
	return s.guard
}

func (s *Service) Approve(ctx context.Context, actorID string, targetID int64) (*user.User, error) {
	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, targetID, user.StatusApproved, nil, "approve")
}

func (s *Service) Reject(ctx context.Context, actorID string, targetID int64) (*user.User, error) {
	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, targetID, user.StatusRejected, nil, "reject")
}

// ChangeStatus sets an arbitrary status. isAdmin is applied only when
// non-nil.
func (s *Service) ChangeStatus(
	ctx context.Context,
	actorID string,
	targetID int64,
	rawStatus string,
	isAdmin *bool,
) (*user.User, error) {
	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return nil, err
	}

	status, err := user.ParseStatus(rawStatus)
	if err != nil {
		return nil, core.ValidationError(
			"status must be one of pending, approved, rejected")
	}

	return s.transition(ctx, actor, targetID, status, isAdmin, "change_status")
}

// transition is the single write path for status changes. approvedAt
// follows the new status; the admin flag changes only on explicit override.
func (s *Service) transition(
	ctx context.Context,
	actor *user.User,
	targetID int64,
	status user.Status,
	isAdmin *bool,
	name string,
) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin."+name,
		attribute.Int64("target.id", targetID),
		attribute.String("status", string(status)),
	)

	var result *user.User
	err := s.db.InTx(ctx, func(tx core.Store) error {
		repo := user.NewRepository(tx)

		target, err := repo.GetByIDForUpdate(ctx, targetID)
		if err != nil {
			return err
		}

		target.SetStatus(status, s.now())
		if isAdmin != nil {
			target.IsAdmin = *isAdmin
		}

		if err := repo.Update(ctx, target); err != nil {
			return err
		}

		result = target
		return nil
	})
	core.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	metrics.ObserveAccountTransition(name)
	slog.InfoContext(ctx, "account status changed",
		"actor_id", actor.ID,
		"target_id", targetID,
		"status", status,
		"is_admin", result.IsAdmin,
	)

	return result, nil
}

// DeleteUser soft-deletes the target. The raw id is parsed strictly first
// and then by its leading digits.
func (s *Service) DeleteUser(ctx context.Context, actorID, rawTarget string) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.delete_user")
	var err error
	defer func() { core.EndSpan(span, err) }()

	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return nil, err
	}

	rawTarget = strings.TrimSpace(rawTarget)
	if rawTarget == "" {
		err = core.ValidationError("target user id is required")
		return nil, err
	}

	targetID, err := core.ParseID(rawTarget)
	if err != nil {
		targetID, err = core.ParseLeadingID(rawTarget)
		if err != nil {
			err = fmt.Errorf("delete user %q: %w", rawTarget, core.ErrNotFound)
			return nil, err
		}
	}

	var result *user.User
	err = s.db.InTx(ctx, func(tx core.Store) error {
		repo := user.NewRepository(tx)

		target, err := repo.GetByIDForUpdate(ctx, targetID)
		if err != nil {
			return err
		}

		switch {
		case target.ID == actor.ID:
			return fmt.Errorf("delete user %d: %w", targetID, ErrSelfAction)
		case s.policy.IsDistinguishedAdmin(target.Email):
			return fmt.Errorf("delete user %d: %w", targetID, ErrProtectedAccount)
		case target.IsDeleted():
			return fmt.Errorf("delete user %d: %w", targetID, user.ErrAlreadyDeleted)
		}

		now := s.now()
		target.DeletedAt = &now

		if err := repo.Update(ctx, target); err != nil {
			return err
		}

		result = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveAccountTransition("admin_delete")
	slog.InfoContext(ctx, "account deleted by admin",
		"actor_id", actor.ID,
		"target_id", targetID,
	)

	return result, nil
}

func (s *Service) RestoreUser(ctx context.Context, actorID string, targetID int64) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "admin.restore_user",
		attribute.Int64("target.id", targetID))
	var err error
	defer func() { core.EndSpan(span, err) }()

	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var result *user.User
	err = s.db.InTx(ctx, func(tx core.Store) error {
		repo := user.NewRepository(tx)

		target, err := repo.GetByIDForUpdate(ctx, targetID)
		if err != nil {
			return err
		}

		if !target.IsDeleted() {
			return fmt.Errorf("restore user %d: %w", targetID, user.ErrNotDeleted)
		}

		target.DeletedAt = nil

		if err := repo.Update(ctx, target); err != nil {
			return err
		}

		result = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveAccountTransition("admin_restore")
	slog.InfoContext(ctx, "account restored by admin",
		"actor_id", actor.ID,
		"target_id", targetID,
	)

	return result, nil
}

type ListParams struct {
	ShowDeleted string
	Status      string
}

// ListRequests lists active users, or deleted ones when ShowDeleted is
// truthy. An empty status, "all" or "toate" disables the status filter.
func (s *Service) ListRequests(
	ctx context.Context,
	actorID string,
	params ListParams,
) ([]user.User, error) {
	if _, err := s.guard.Require(ctx, actorID); err != nil {
		return nil, err
	}

	filter := user.ListParams{Deleted: parseBool(params.ShowDeleted)}

	switch raw := strings.ToLower(strings.TrimSpace(params.Status)); raw {
	case "", "all", "toate":
	default:
		status, err := user.ParseStatus(raw)
		if err != nil {
			return nil, core.ValidationError(
				"status must be one of pending, approved, rejected, all")
		}
		filter.Status = status
	}

	return user.NewRepository(s.db).List(ctx, filter)
}

// UserPrescriptions lists a user's prescriptions, deleted users included.
func (s *Service) UserPrescriptions(
	ctx context.Context,
	actorID string,
	targetID int64,
) ([]prescription.Prescription, error) {
	if _, err := s.guard.Require(ctx, actorID); err != nil {
		return nil, err
	}

	if _, err := user.NewRepository(s.db).GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	return s.prescriptions.ListForUser(ctx, targetID)
}

func (s *Service) DeletePrescription(ctx context.Context, actorID string, id int64) error {
	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.prescriptions.DeleteByID(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "prescription deleted by admin",
		"actor_id", actor.ID,
		"prescription_id", id,
	)
	return nil
}

// RunQuery executes an ad hoc read statement with a timeout and a row cap.
func (s *Service) RunQuery(
	ctx context.Context,
	actorID string,
	req QueryRequest,
) (*QueryResponse, error) {
	actor, err := s.guard.Require(ctx, actorID)
	if err != nil {
		return nil, err
	}

	query, err := CheckReadStatement(req.Query)
	if err != nil {
		metrics.ObserveAdminQuery("rejected")
		return nil, err
	}

	single := strings.EqualFold(strings.TrimSpace(req.Type), QueryGet)
	maxRows := s.query.MaxRows
	if single {
		maxRows = 1
	}

	ctx, span := core.StartSpan(ctx, "admin.db_query")
	queryCtx, cancel := context.WithTimeout(ctx, s.query.Timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.runner.QueryRows(queryCtx, query, maxRows)
	elapsed := time.Since(start)
	core.EndSpan(span, err)
	if err != nil {
		metrics.ObserveAdminQuery("failed")
		return nil, fmt.Errorf("admin query: %w", err)
	}

	metrics.ObserveAdminQuery("ok")
	slog.InfoContext(ctx, "admin query executed",
		"actor_id", actor.ID,
		"rows", len(rows),
		"duration", elapsed,
	)

	resp := &QueryResponse{
		ExecutionTime: strconv.FormatInt(elapsed.Milliseconds(), 10) + "ms",
	}

	if single {
		if len(rows) > 0 {
			resp.Result = rows[0]
			resp.Count = 1
		}
		return resp, nil
	}

	resp.Result = rows
	resp.Count = len(rows)
	return resp, nil
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}
