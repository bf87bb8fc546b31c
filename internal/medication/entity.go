// AngelaMos | 2026
// entity.go

package medication

// Medication is one row of the reference table. Every column except the id
// is free text as published and may be empty.
type Medication struct {
	ID                          int64   `db:"id"                             json:"id"`
	Name                        *string `db:"name"                           json:"name"`
	ActiveSubstance             *string `db:"active_substance"               json:"activeSubstance"`
	CompensationList            *string `db:"compensation_list"              json:"compensationList"`
	Code                        *string `db:"code"                           json:"code"`
	PharmaceuticalForm          *string `db:"pharmaceutical_form"            json:"pharmaceuticalForm"`
	ATCCode                     *string `db:"atc_code"                       json:"atcCode"`
	PrescriptionMode            *string `db:"prescription_mode"              json:"prescriptionMode"`
	Concentration               *string `db:"concentration"                  json:"concentration"`
	Packaging                   *string `db:"packaging"                      json:"packaging"`
	HolderName                  *string `db:"holder_name"                    json:"holderName"`
	HolderCountry               *string `db:"holder_country"                 json:"holderCountry"`
	QuantityPerPackage          *string `db:"quantity_per_package"           json:"quantityPerPackage"`
	MaxPricePackage             *string `db:"max_price_package"              json:"maxPricePackage"`
	MaxPriceUnit                *string `db:"max_price_unit"                 json:"maxPriceUnit"`
	ContributionMax100          *string `db:"contribution_max_100"           json:"contributionMax100"`
	ContributionMax905020       *string `db:"contribution_max_90_50_20"      json:"contributionMax905020"`
	ContributionMaxPensioners90 *string `db:"contribution_max_pensioners_90" json:"contributionMaxPensioners90"`
	AgeCategory                 *string `db:"age_category"                   json:"ageCategory"`
	DiseaseCodes                *string `db:"disease_codes"                  json:"diseaseCodes"`
}

const (
	DefaultLimit = 50
	MaxLimit     = 50000
)

type SearchParams struct {
	Search string
	Limit  int
	Offset int
}

type SearchResult struct {
	Items []Medication `json:"items"`
	Count int          `json:"count"`
}
