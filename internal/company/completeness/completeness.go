// Package completeness classifies company records as fully populated or
// not, using a two-tier field-count policy.
package completeness

import (
	"math"

	"github.com/gartstein/insightdesk/internal/company/models"
)

// Policy holds the minimum number of populated fields each tier needs
// for a record to count as fully populated.
type Policy struct {
	RequiredMin int
	OptionalMin int
}

// DefaultPolicy requires 13 required-tier and 9 optional-tier fields.
// The required count is fixed: NewPolicyFromRatios(0.8, 0.5) over the 17
// required fields yields 14, not 13.
var DefaultPolicy = Policy{RequiredMin: 13, OptionalMin: 9}

// NewPolicyFromRatios derives thresholds as ceil(tier size * ratio).
func NewPolicyFromRatios(requiredRatio, optionalRatio float64) Policy {
	return Policy{
		RequiredMin: int(math.Ceil(float64(len(models.RequiredFields)) * requiredRatio)),
		OptionalMin: int(math.Ceil(float64(len(models.OptionalFields)) * optionalRatio)),
	}
}

// Report describes how populated a record is against a Policy.
type Report struct {
	RequiredPopulated int      `json:"requiredPopulated"`
	RequiredMin       int      `json:"requiredMin"`
	OptionalPopulated int      `json:"optionalPopulated"`
	OptionalMin       int      `json:"optionalMin"`
	Complete          bool     `json:"complete"`
	MissingRequired   []string `json:"missingRequired,omitempty"`
	MissingOptional   []string `json:"missingOptional,omitempty"`
}

// Evaluate counts populated fields per tier. Both thresholds must be met
// for the record to be complete.
func (p Policy) Evaluate(c *models.Company) Report {
	r := Report{RequiredMin: p.RequiredMin, OptionalMin: p.OptionalMin}
	if c == nil {
		return r
	}

	for _, f := range models.RequiredFields {
		if f.Populated(c) {
			r.RequiredPopulated++
		} else {
			r.MissingRequired = append(r.MissingRequired, f.Name)
		}
	}
	for _, f := range models.OptionalFields {
		if f.Populated(c) {
			r.OptionalPopulated++
		} else {
			r.MissingOptional = append(r.MissingOptional, f.Name)
		}
	}

	r.Complete = r.RequiredPopulated >= p.RequiredMin && r.OptionalPopulated >= p.OptionalMin
	return r
}

// IsFullyPopulated reports whether c meets both tier thresholds.
func (p Policy) IsFullyPopulated(c *models.Company) bool {
	return p.Evaluate(c).Complete
}
