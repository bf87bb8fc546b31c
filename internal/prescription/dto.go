// AngelaMos | 2026
// dto.go

package prescription

import (
	"encoding/json"
	"time"

	"github.com/carterperez-dev/medassist/internal/core"
)

type CreateRequest struct {
	UserID         core.RawID                 `json:"userId"`
	PatientName    string                     `json:"patientName"    validate:"max=200"`
	Medications    []json.RawMessage          `json:"medications"`
	TreatmentPlans map[string]json.RawMessage `json:"treatmentPlans"`
	PatientNotes   string                     `json:"patientNotes"   validate:"max=10000"`
	DoctorNotes    string                     `json:"doctorNotes"    validate:"max=10000"`
}

type Response struct {
	ID             int64                      `json:"id"`
	UserID         int64                      `json:"userId"`
	PatientName    *string                    `json:"patientName"`
	Medications    []json.RawMessage          `json:"medications"`
	TreatmentPlans map[string]json.RawMessage `json:"treatmentPlans"`
	PatientNotes   *string                    `json:"patientNotes"`
	DoctorNotes    *string                    `json:"doctorNotes"`
	CreatedAt      time.Time                  `json:"createdAt"`
}

type DeleteAllResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

func ToResponse(p *Prescription) Response {
	d := p.Decode()
	return Response{
		ID:             p.ID,
		UserID:         p.UserID,
		PatientName:    p.PatientName,
		Medications:    d.Medications,
		TreatmentPlans: d.TreatmentPlans,
		PatientNotes:   p.PatientNotes,
		DoctorNotes:    p.DoctorNotes,
		CreatedAt:      p.CreatedAt,
	}
}

func ToResponseList(items []Prescription) []Response {
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, ToResponse(&items[i]))
	}
	return out
}
