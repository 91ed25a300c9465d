// Package models defines the core domain models of the service: the
// Company record with its typed field table, content items with their
// transcriptions, and user accounts.
package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyType represents the relationship category of a company.
type CompanyType string

const (
	// Supplier is the default type for newly created companies.
	Supplier   CompanyType = "SUPPLIER"
	Competitor CompanyType = "COMPETITOR"
	Partner    CompanyType = "PARTNER"
	Target     CompanyType = "TARGET"
	Customer   CompanyType = "CUSTOMER"
)

// Valid reports whether t is one of the known company types.
func (t CompanyType) Valid() bool {
	switch t {
	case Supplier, Competitor, Partner, Target, Customer:
		return true
	}
	return false
}

// SWOT is a structured strengths/weaknesses/opportunities/threats analysis.
type SWOT struct {
	Strengths     []string `json:"strengths,omitempty"`
	Weaknesses    []string `json:"weaknesses,omitempty"`
	Opportunities []string `json:"opportunities,omitempty"`
	Threats       []string `json:"threats,omitempty"`
}

// Empty reports whether none of the four lists has an entry.
func (s *SWOT) Empty() bool {
	return s == nil ||
		len(s.Strengths) == 0 && len(s.Weaknesses) == 0 &&
			len(s.Opportunities) == 0 && len(s.Threats) == 0
}

// Company is the business-intelligence profile of one organization.
// Name is the unique key; every other profile field is independently
// optional. Pointer types distinguish "unset" from zero for numbers.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	// Name is the company's unique name (case-sensitive).
	Name string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	// Type specifies the relationship category of the company.
	Type CompanyType `json:"type,omitempty" gorm:"size:32;index"`
	// Version increments on every merge and guards concurrent writes.
	Version int `json:"version" gorm:"not null"`

	// Required tier.
	Description   string `json:"description,omitempty" gorm:"type:text"`
	Industry      string `json:"industry,omitempty"`
	Website       string `json:"website,omitempty"`
	Country       string `json:"country,omitempty"`
	Size          string `json:"size,omitempty"`
	Sector        string `json:"sector,omitempty"`
	FoundedYear   *int   `json:"foundedYear,omitempty"`
	Headquarters  string `json:"headquarters,omitempty"`
	Revenue       string `json:"revenue,omitempty"`
	EmployeeCount string `json:"employeeCount,omitempty"`
	LegalStatus   string `json:"legalStatus,omitempty"`
	CEO           string `json:"ceo,omitempty" gorm:"column:ceo;type:text"`
	LinkedIn      string `json:"linkedin,omitempty" gorm:"column:linkedin"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	BusinessModel string `json:"businessModel,omitempty"`
	TargetMarket  string `json:"targetMarket,omitempty" gorm:"type:text"`

	// Optional-but-important tier.
	MarketCap            string   `json:"marketCap,omitempty"`
	StockSymbol          string   `json:"stockSymbol,omitempty"`
	Founders             string   `json:"founders,omitempty" gorm:"type:text"`
	BoardMembers         []string `json:"boardMembers,omitempty" gorm:"serializer:json"`
	Twitter              string   `json:"twitter,omitempty"`
	Facebook             string   `json:"facebook,omitempty"`
	Instagram            string   `json:"instagram,omitempty"`
	YouTube              string   `json:"youtube,omitempty" gorm:"column:youtube"`
	Address              string   `json:"address,omitempty"`
	GlassdoorRating      *float64 `json:"glassdoorRating,omitempty"`
	GoogleRating         *float64 `json:"googleRating,omitempty"`
	Products             []string `json:"products,omitempty" gorm:"serializer:json"`
	GeographicPresence   []string `json:"geographicPresence,omitempty" gorm:"serializer:json"`
	KeyPartners          []string `json:"keyPartners,omitempty" gorm:"serializer:json"`
	Competitors          []string `json:"competitors,omitempty" gorm:"serializer:json"`
	MarketShare          string   `json:"marketShare,omitempty"`
	CompetitiveAdvantage string   `json:"competitiveAdvantage,omitempty" gorm:"type:text"`
	GrowthStage          string   `json:"growthStage,omitempty"`

	// Profile details outside the completeness tiers.
	TradingName               string   `json:"tradingName,omitempty"`
	KeyExecutives             []string `json:"keyExecutives,omitempty" gorm:"serializer:json"`
	OtherSocial               []string `json:"otherSocial,omitempty" gorm:"serializer:json"`
	SupportEmail              string   `json:"supportEmail,omitempty"`
	SalesEmail                string   `json:"salesEmail,omitempty"`
	PressContact              string   `json:"pressContact,omitempty"`
	TrustpilotScore           *float64 `json:"trustpilotScore,omitempty"`
	BBBRating                 string   `json:"bbbRating,omitempty" gorm:"column:bbb_rating"`
	YelpRating                *float64 `json:"yelpRating,omitempty"`
	IndustryReviews           []string `json:"industryReviews,omitempty" gorm:"serializer:json"`
	Languages                 []string `json:"languages,omitempty" gorm:"serializer:json"`
	MajorClients              []string `json:"majorClients,omitempty" gorm:"serializer:json"`
	Suppliers                 []string `json:"suppliers,omitempty" gorm:"serializer:json"`
	Acquisitions              []string `json:"acquisitions,omitempty" gorm:"serializer:json"`
	Subsidiaries              []string `json:"subsidiaries,omitempty" gorm:"serializer:json"`
	IndustryRanking           string   `json:"industryRanking,omitempty"`
	MarketTrends              []string `json:"marketTrends,omitempty" gorm:"serializer:json"`
	RecentNews                []string `json:"recentNews,omitempty" gorm:"serializer:json"`
	PressReleases             []string `json:"pressReleases,omitempty" gorm:"serializer:json"`
	MediaMentions             []string `json:"mediaMentions,omitempty" gorm:"serializer:json"`
	Awards                    []string `json:"awards,omitempty" gorm:"serializer:json"`
	SpeakingEngagements       []string `json:"speakingEngagements,omitempty" gorm:"serializer:json"`
	TechnologyStack           []string `json:"technologyStack,omitempty" gorm:"serializer:json"`
	Patents                   []string `json:"patents,omitempty" gorm:"serializer:json"`
	RDInvestment              string   `json:"rdInvestment,omitempty" gorm:"column:rd_investment"`
	InnovationAreas           []string `json:"innovationAreas,omitempty" gorm:"serializer:json"`
	TechPartnerships          []string `json:"techPartnerships,omitempty" gorm:"serializer:json"`
	ESGScore                  string   `json:"esgScore,omitempty" gorm:"column:esg_score"`
	SustainabilityInitiatives []string `json:"sustainabilityInitiatives,omitempty" gorm:"serializer:json"`
	CorporateValues           []string `json:"corporateValues,omitempty" gorm:"serializer:json"`
	DiversityInclusion        []string `json:"diversityInclusion,omitempty" gorm:"serializer:json"`
	SocialImpact              []string `json:"socialImpact,omitempty" gorm:"serializer:json"`
	OfficeLocations           []string `json:"officeLocations,omitempty" gorm:"serializer:json"`
	RemoteWorkPolicy          string   `json:"remoteWorkPolicy,omitempty"`
	WorkCulture               string   `json:"workCulture,omitempty" gorm:"type:text"`
	Benefits                  []string `json:"benefits,omitempty" gorm:"serializer:json"`
	HiringStatus              string   `json:"hiringStatus,omitempty"`
	SWOTAnalysis              *SWOT    `json:"swotAnalysis,omitempty" gorm:"column:swot_analysis;serializer:json"`
	RiskFactors               []string `json:"riskFactors,omitempty" gorm:"serializer:json"`
	GrowthStrategy            string   `json:"growthStrategy,omitempty" gorm:"type:text"`
	InvestmentThesis          string   `json:"investmentThesis,omitempty" gorm:"type:text"`
	DueDiligenceNotes         []string `json:"dueDiligenceNotes,omitempty" gorm:"serializer:json"`

	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt records the timestamp when the company was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// MergeFrom copies every populated profile field of src onto c. Fields
// that are empty in src never erase what c already holds. Identity and
// bookkeeping fields (ID, Name, Version, timestamps) are left alone.
func (c *Company) MergeFrom(src *Company) {
	for _, f := range fieldTable {
		f.merge(c, src)
	}
}

// ClearBookkeeping resets the fields owned by storage so a client
// payload cannot set them.
func (c *Company) ClearBookkeeping() {
	c.ID = uuid.Nil
	c.Version = 0
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
}
