// AngelaMos | 2026
// dto.go

package medicine

import (
	"strings"
	"time"

	"github.com/carterperez-dev/medassist/internal/core"
)

type UpsertRequest struct {
	UserID             core.RawID `json:"userId"`
	Name               string     `json:"name"               validate:"max=200"`
	PharmaceuticalForm string     `json:"pharmaceuticalForm" validate:"max=200"`
	Concentration      string     `json:"concentration"      validate:"max=200"`
	ActiveSubstance    string     `json:"activeSubstance"    validate:"max=200"`
	ATCCode            string     `json:"atcCode"            validate:"max=20"`
	PrescriptionMode   string     `json:"prescriptionMode"   validate:"max=50"`
	Notes              string     `json:"notes"              validate:"max=2000"`
}

// apply copies the request onto m. Blank optional fields are stored as NULL.
func (req UpsertRequest) apply(m *Medicine) {
	m.Name = strings.TrimSpace(req.Name)
	m.PharmaceuticalForm = optional(req.PharmaceuticalForm)
	m.Concentration = optional(req.Concentration)
	m.ActiveSubstance = optional(req.ActiveSubstance)
	m.ATCCode = optional(req.ATCCode)
	m.PrescriptionMode = optional(req.PrescriptionMode)
	m.Notes = optional(req.Notes)
}

type Response struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	PharmaceuticalForm *string   `json:"pharmaceuticalForm"`
	Concentration      *string   `json:"concentration"`
	ActiveSubstance    *string   `json:"activeSubstance"`
	ATCCode            *string   `json:"atcCode"`
	PrescriptionMode   *string   `json:"prescriptionMode"`
	Notes              *string   `json:"notes"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func ToResponse(m *Medicine) Response {
	return Response{
		ID:                 m.ID,
		Name:               m.Name,
		PharmaceuticalForm: m.PharmaceuticalForm,
		Concentration:      m.Concentration,
		ActiveSubstance:    m.ActiveSubstance,
		ATCCode:            m.ATCCode,
		PrescriptionMode:   m.PrescriptionMode,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func ToResponseList(items []Medicine) []Response {
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, ToResponse(&items[i]))
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
