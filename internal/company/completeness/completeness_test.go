package completeness

import (
	"testing"

	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/gartstein/insightdesk/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func fullCompany() *models.Company {
	return &models.Company{
		Name:                 "Acme",
		Description:          "Maker of everything",
		Industry:             "Manufacturing",
		Website:              "https://acme.example",
		Country:              "US",
		Size:                 "Large",
		Sector:               "Industrial",
		FoundedYear:          utils.Ptr(1949),
		Headquarters:         "Phoenix, AZ",
		Revenue:              "$1.2B",
		EmployeeCount:        "5000",
		LegalStatus:          "Private",
		CEO:                  "Wile E. Coyote",
		LinkedIn:             "https://linkedin.com/company/acme",
		Phone:                "+1 555 0100",
		Email:                "info@acme.example",
		BusinessModel:        "B2B",
		TargetMarket:         "Roadrunner hunters",
		MarketCap:            "$3B",
		StockSymbol:          "ACME",
		Founders:             "A. Cme",
		BoardMembers:         []string{"B. Bunny"},
		Twitter:              "@acme",
		Facebook:             "fb.com/acme",
		Instagram:            "@acme",
		YouTube:              "yt.com/acme",
		Address:              "1 Desert Rd",
		GlassdoorRating:      utils.Ptr(4.1),
		GoogleRating:         utils.Ptr(4.4),
		Products:             []string{"Anvil", "Rocket skates"},
		GeographicPresence:   []string{"US"},
		KeyPartners:          []string{"Warner"},
		Competitors:          []string{"Ajax"},
		MarketShare:          "12%",
		CompetitiveAdvantage: "Catalog breadth",
		GrowthStage:          "Mature",
	}
}

func TestPolicy_IsFullyPopulated(t *testing.T) {
	tests := []struct {
		name     string
		required int
		optional int
		want     bool
	}{
		{name: "empty record", required: 0, optional: 0, want: false},
		{name: "required below threshold with all optional", required: 12, optional: 18, want: false},
		{name: "all required but no optional", required: 17, optional: 0, want: false},
		{name: "required at threshold optional below", required: 13, optional: 8, want: false},
		{name: "both at threshold", required: 13, optional: 9, want: true},
		{name: "everything populated", required: 17, optional: 18, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := withTiers(tt.required, tt.optional)
			report := DefaultPolicy.Evaluate(c)

			assert.Equal(t, tt.required, report.RequiredPopulated)
			assert.Equal(t, tt.optional, report.OptionalPopulated)
			assert.Equal(t, tt.want, DefaultPolicy.IsFullyPopulated(c))
			assert.Len(t, report.MissingRequired, len(models.RequiredFields)-tt.required)
			assert.Len(t, report.MissingOptional, len(models.OptionalFields)-tt.optional)
		})
	}
}

// withTiers keeps the first n required and m optional fields of a fully
// populated company and clears the rest.
func withTiers(n, m int) *models.Company {
	full := fullCompany()
	keep := map[string]bool{}
	for _, f := range models.RequiredFields[:n] {
		keep[f.Name] = true
	}
	for _, f := range models.OptionalFields[:m] {
		keep[f.Name] = true
	}

	out := &models.Company{Name: full.Name}
	for _, f := range models.Fields() {
		if !keep[f.Name] {
			continue
		}
		f.Merge(out, full)
	}
	return out
}

func TestPresence(t *testing.T) {
	zero := 0
	zeroRating := 0.0

	tests := []struct {
		name    string
		company *models.Company
		field   string
		want    bool
	}{
		{name: "empty string", company: &models.Company{Industry: ""}, field: "industry", want: false},
		{name: "non-empty string", company: &models.Company{Industry: "Beverages"}, field: "industry", want: true},
		{name: "nil year", company: &models.Company{}, field: "foundedYear", want: false},
		{name: "zero year counts", company: &models.Company{FoundedYear: &zero}, field: "foundedYear", want: true},
		{name: "zero rating counts", company: &models.Company{GoogleRating: &zeroRating}, field: "googleRating", want: true},
		{name: "nil list", company: &models.Company{}, field: "products", want: false},
		{name: "empty list", company: &models.Company{Products: []string{}}, field: "products", want: false},
		{name: "list with entry", company: &models.Company{Products: []string{"Anvil"}}, field: "products", want: true},
		{name: "nil swot", company: &models.Company{}, field: "swotAnalysis", want: false},
		{name: "empty swot", company: &models.Company{SWOTAnalysis: &models.SWOT{}}, field: "swotAnalysis", want: false},
		{name: "swot with threat", company: &models.Company{SWOTAnalysis: &models.SWOT{Threats: []string{"Ajax"}}}, field: "swotAnalysis", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := models.LookupField(tt.field)
			assert.True(t, ok)
			assert.Equal(t, tt.want, f.Populated(tt.company))
		})
	}
}

func TestNewPolicyFromRatios(t *testing.T) {
	p := NewPolicyFromRatios(0.8, 0.5)
	assert.Equal(t, 14, p.RequiredMin)
	assert.Equal(t, 9, p.OptionalMin)
	assert.Equal(t, 13, DefaultPolicy.RequiredMin, "default is not derived from the ratios")
}

func TestEvaluateNil(t *testing.T) {
	r := DefaultPolicy.Evaluate(nil)
	assert.False(t, r.Complete)
	assert.Equal(t, 13, r.RequiredMin)
	assert.Equal(t, 9, r.OptionalMin)
}
