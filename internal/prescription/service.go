// AngelaMos | 2026
// service.go

package prescription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/user"
)

// Owners resolves the account a prescription belongs to. *user.Service
// satisfies it.
type Owners interface {
	GetActive(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	db     core.Store
	owners Owners
	now    func() time.Time
}

func NewService(db core.Store, owners Owners) *Service {
	return &Service{
		db:     db,
		owners: owners,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// approvedOwner returns the owner if it is active and approved.
func (s *Service) approvedOwner(ctx context.Context, ownerID int64) (*user.User, error) {
	owner, err := s.owners.GetActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !owner.IsApproved() {
		return nil, fmt.Errorf("owner %d: %w", ownerID, ErrNotApproved)
	}

	return owner, nil
}

func (s *Service) Create(
	ctx context.Context,
	ownerID int64,
	req CreateRequest,
) (*Prescription, error) {
	ctx, span := core.StartSpan(ctx, "prescription.Create",
		attribute.Int64("user.id", ownerID))
	var err error
	defer func() { core.EndSpan(span, err) }()

	if _, err = s.approvedOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	meds := req.Medications
	if meds == nil {
		meds = []json.RawMessage{}
	}

	medsJSON, err := json.Marshal(meds)
	if err != nil {
		err = core.ValidationError("medications must be a JSON array")
		return nil, err
	}

	p := &Prescription{
		UserID:          ownerID,
		PatientName:     optional(req.PatientName),
		MedicationsJSON: string(medsJSON),
		PatientNotes:    optional(req.PatientNotes),
		DoctorNotes:     optional(req.DoctorNotes),
		CreatedAt:       s.now(),
	}

	if req.TreatmentPlans != nil {
		plans, marshalErr := json.Marshal(req.TreatmentPlans)
		if marshalErr != nil {
			err = core.ValidationError("treatmentPlans must be a JSON object")
			return nil, err
		}
		text := string(plans)
		p.TreatmentPlansJSON = &text
	}

	if err = NewRepository(s.db).Create(ctx, p); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "prescription created",
		"prescription_id", p.ID,
		"user_id", ownerID,
		"medications", len(meds),
	)

	return p, nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]Prescription, error) {
	if _, err := s.approvedOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	return NewRepository(s.db).ListByUser(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := NewRepository(s.db).DeleteOwned(ctx, ownerID, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "prescription deleted",
		"prescription_id", id,
		"user_id", ownerID,
	)
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, ownerID int64) (int64, error) {
	if _, err := s.owners.GetActive(ctx, ownerID); err != nil {
		return 0, err
	}

	n, err := NewRepository(s.db).DeleteAllOwned(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "prescriptions cleared",
		"user_id", ownerID,
		"deleted", n,
	)
	return n, nil
}

// ListForUser returns a user's prescriptions without any owner checks.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Prescription, error) {
	return NewRepository(s.db).ListByUser(ctx, userID)
}

// DeleteByID removes a prescription regardless of its owner.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	return NewRepository(s.db).Delete(ctx, id)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
