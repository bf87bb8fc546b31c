// AngelaMos | 2026
// entity.go

package prescription

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

var ErrNotApproved = errors.New("account is not approved")

// Prescription is a stored row. Medications and treatment plans are kept as
// serialized JSON text.
type Prescription struct {
	ID                 int64     `db:"id"`
	UserID             int64     `db:"user_id"`
	PatientName        *string   `db:"patient_name"`
	MedicationsJSON    string    `db:"medications_json"`
	TreatmentPlansJSON *string   `db:"treatment_plans_json"`
	PatientNotes       *string   `db:"patient_notes"`
	DoctorNotes        *string   `db:"doctor_notes"`
	CreatedAt          time.Time `db:"created_at"`
}

// Decoded holds the JSON columns after decoding. A column that fails to
// decode degrades to an empty list or nil instead of failing the caller.
type Decoded struct {
	Medications    []json.RawMessage
	TreatmentPlans map[string]json.RawMessage
}

func (p *Prescription) Decode() Decoded {
	d := Decoded{Medications: []json.RawMessage{}}

	if p.MedicationsJSON != "" {
		var meds []json.RawMessage
		if err := json.Unmarshal([]byte(p.MedicationsJSON), &meds); err != nil {
			slog.Warn("prescription medications undecodable",
				"prescription_id", p.ID,
				"error", err,
			)
		} else if meds != nil {
			d.Medications = meds
		}
	}

	if p.TreatmentPlansJSON != nil && *p.TreatmentPlansJSON != "" {
		var plans map[string]json.RawMessage
		if err := json.Unmarshal([]byte(*p.TreatmentPlansJSON), &plans); err != nil {
			slog.Warn("prescription treatment plans undecodable",
				"prescription_id", p.ID,
				"error", err,
			)
		} else {
			d.TreatmentPlans = plans
		}
	}

	return d
}
