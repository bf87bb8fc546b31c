// AngelaMos | 2026
// entity.go

package medicine

import (
	"time"
)

// Medicine is a custom medicine authored by one user.
type Medicine struct {
	ID                 int64     `db:"id"`
	UserID             int64     `db:"user_id"`
	Name               string    `db:"name"`
	PharmaceuticalForm *string   `db:"pharmaceutical_form"`
	Concentration      *string   `db:"concentration"`
	ActiveSubstance    *string   `db:"active_substance"`
	ATCCode            *string   `db:"atc_code"`
	PrescriptionMode   *string   `db:"prescription_mode"`
	Notes              *string   `db:"notes"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
