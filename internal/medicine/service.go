// AngelaMos | 2026
// service.go

package medicine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/user"
)

var errNameRequired = core.ValidationError("name is required")

type Owners interface {
	GetActive(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	db     core.TxStore
	owners Owners
	now    func() time.Time
}

func NewService(db core.TxStore, owners Owners) *Service {
	return &Service{
		db:     db,
		owners: owners,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]Medicine, error) {
	return NewRepository(s.db).ListByUser(ctx, ownerID)
}

func (s *Service) Create(
	ctx context.Context,
	ownerID int64,
	req UpsertRequest,
) (*Medicine, error) {
	m := &Medicine{UserID: ownerID}
	req.apply(m)
	if m.Name == "" {
		return nil, errNameRequired
	}

	if _, err := s.owners.GetActive(ctx, ownerID); err != nil {
		return nil, err
	}

	now := s.now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := NewRepository(s.db).Create(ctx, m); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "custom medicine created",
		"medicine_id", m.ID,
		"user_id", ownerID,
	)
	return m, nil
}

// Update checks ownership before validating the payload, so a foreign or
// missing medicine is always reported as not found.
func (s *Service) Update(
	ctx context.Context,
	ownerID, id int64,
	req UpsertRequest,
) (*Medicine, error) {
	var result *Medicine

	err := s.db.InTx(ctx, func(tx core.Store) error {
		repo := NewRepository(tx)

		m, err := repo.GetOwned(ctx, ownerID, id)
		if err != nil {
			return err
		}

		req.apply(m)
		if m.Name == "" {
			return errNameRequired
		}
		m.UpdatedAt = s.now()

		if err := repo.Update(ctx, m); err != nil {
			return err
		}

		result = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update medicine %d: %w", id, err)
	}

	return result, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return NewRepository(s.db).DeleteOwned(ctx, ownerID, id)
}
