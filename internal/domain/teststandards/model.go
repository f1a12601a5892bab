package teststandards

import "time"

// Category groups the catalog for browsing.
type Category string

const (
	CategorySTI       Category = "sti"
	CategoryHIV       Category = "hiv"
	CategoryHepB      Category = "hepatitis_b"
	CategoryHepC      Category = "hepatitis_c"
	CategoryFertility Category = "fertility"
	CategoryGeneral   Category = "general"
)

// ParameterSpec describes one measurement a standard requires the lab to report.
type ParameterSpec struct {
	Name           string
	Unit           string
	ReferenceRange string
}

// TestStandard is a purchasable test definition. Assessment codes reference a
// standard at issuance; only active standards can be purchased.
type TestStandard struct {
	ID       string
	Name     string
	Category Category

	Parameters []ParameterSpec

	// Price in kobo to avoid float money.
	PriceKobo int64

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
