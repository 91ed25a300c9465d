package models

// Kind is the semantic type of a company profile field.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindList
	KindSWOT
	KindType
)

// Field describes one profile field of a Company: its wire name, its
// kind, how to tell whether it is populated and how to merge it.
type Field struct {
	Name      string
	Kind      Kind
	populated func(c *Company) bool
	merge     func(dst, src *Company)
}

// Populated reports whether the field holds a value on c. Empty strings,
// unset numbers, empty lists and empty SWOT analyses are not populated;
// zero numbers are.
func (f Field) Populated(c *Company) bool {
	return f.populated(c)
}

// Merge copies the field from src onto dst when src has it populated.
func (f Field) Merge(dst, src *Company) {
	f.merge(dst, src)
}

func newField[T any](name string, kind Kind, ref func(*Company) *T, present func(T) bool) Field {
	return Field{
		Name: name,
		Kind: kind,
		populated: func(c *Company) bool {
			return present(*ref(c))
		},
		merge: func(dst, src *Company) {
			if v := *ref(src); present(v) {
				*ref(dst) = v
			}
		},
	}
}

func text(name string, ref func(*Company) *string) Field {
	return newField(name, KindText, ref, func(v string) bool { return v != "" })
}

func integer(name string, ref func(*Company) **int) Field {
	return newField(name, KindInt, ref, func(v *int) bool { return v != nil })
}

func rating(name string, ref func(*Company) **float64) Field {
	return newField(name, KindFloat, ref, func(v *float64) bool { return v != nil })
}

func list(name string, ref func(*Company) *[]string) Field {
	return newField(name, KindList, ref, func(v []string) bool { return len(v) > 0 })
}

// RequiredFields is the tier whose population gates completeness at the
// higher threshold.
var RequiredFields = []Field{
	text("description", func(c *Company) *string { return &c.Description }),
	text("industry", func(c *Company) *string { return &c.Industry }),
	text("website", func(c *Company) *string { return &c.Website }),
	text("country", func(c *Company) *string { return &c.Country }),
	text("size", func(c *Company) *string { return &c.Size }),
	text("sector", func(c *Company) *string { return &c.Sector }),
	integer("foundedYear", func(c *Company) **int { return &c.FoundedYear }),
	text("headquarters", func(c *Company) *string { return &c.Headquarters }),
	text("revenue", func(c *Company) *string { return &c.Revenue }),
	text("employeeCount", func(c *Company) *string { return &c.EmployeeCount }),
	text("legalStatus", func(c *Company) *string { return &c.LegalStatus }),
	text("ceo", func(c *Company) *string { return &c.CEO }),
	text("linkedin", func(c *Company) *string { return &c.LinkedIn }),
	text("phone", func(c *Company) *string { return &c.Phone }),
	text("email", func(c *Company) *string { return &c.Email }),
	text("businessModel", func(c *Company) *string { return &c.BusinessModel }),
	text("targetMarket", func(c *Company) *string { return &c.TargetMarket }),
}

// OptionalFields is the optional-but-important tier.
var OptionalFields = []Field{
	text("marketCap", func(c *Company) *string { return &c.MarketCap }),
	text("stockSymbol", func(c *Company) *string { return &c.StockSymbol }),
	text("founders", func(c *Company) *string { return &c.Founders }),
	list("boardMembers", func(c *Company) *[]string { return &c.BoardMembers }),
	text("twitter", func(c *Company) *string { return &c.Twitter }),
	text("facebook", func(c *Company) *string { return &c.Facebook }),
	text("instagram", func(c *Company) *string { return &c.Instagram }),
	text("youtube", func(c *Company) *string { return &c.YouTube }),
	text("address", func(c *Company) *string { return &c.Address }),
	rating("glassdoorRating", func(c *Company) **float64 { return &c.GlassdoorRating }),
	rating("googleRating", func(c *Company) **float64 { return &c.GoogleRating }),
	list("products", func(c *Company) *[]string { return &c.Products }),
	list("geographicPresence", func(c *Company) *[]string { return &c.GeographicPresence }),
	list("keyPartners", func(c *Company) *[]string { return &c.KeyPartners }),
	list("competitors", func(c *Company) *[]string { return &c.Competitors }),
	text("marketShare", func(c *Company) *string { return &c.MarketShare }),
	text("competitiveAdvantage", func(c *Company) *string { return &c.CompetitiveAdvantage }),
	text("growthStage", func(c *Company) *string { return &c.GrowthStage }),
}

// DetailFields are profile fields outside both completeness tiers. They
// merge like every other field but never count toward completeness.
var DetailFields = []Field{
	newField("type", KindType, func(c *Company) *CompanyType { return &c.Type },
		func(v CompanyType) bool { return v != "" }),
	text("tradingName", func(c *Company) *string { return &c.TradingName }),
	list("keyExecutives", func(c *Company) *[]string { return &c.KeyExecutives }),
	list("otherSocial", func(c *Company) *[]string { return &c.OtherSocial }),
	text("supportEmail", func(c *Company) *string { return &c.SupportEmail }),
	text("salesEmail", func(c *Company) *string { return &c.SalesEmail }),
	text("pressContact", func(c *Company) *string { return &c.PressContact }),
	rating("trustpilotScore", func(c *Company) **float64 { return &c.TrustpilotScore }),
	text("bbbRating", func(c *Company) *string { return &c.BBBRating }),
	rating("yelpRating", func(c *Company) **float64 { return &c.YelpRating }),
	list("industryReviews", func(c *Company) *[]string { return &c.IndustryReviews }),
	list("languages", func(c *Company) *[]string { return &c.Languages }),
	list("majorClients", func(c *Company) *[]string { return &c.MajorClients }),
	list("suppliers", func(c *Company) *[]string { return &c.Suppliers }),
	list("acquisitions", func(c *Company) *[]string { return &c.Acquisitions }),
	list("subsidiaries", func(c *Company) *[]string { return &c.Subsidiaries }),
	text("industryRanking", func(c *Company) *string { return &c.IndustryRanking }),
	list("marketTrends", func(c *Company) *[]string { return &c.MarketTrends }),
	list("recentNews", func(c *Company) *[]string { return &c.RecentNews }),
	list("pressReleases", func(c *Company) *[]string { return &c.PressReleases }),
	list("mediaMentions", func(c *Company) *[]string { return &c.MediaMentions }),
	list("awards", func(c *Company) *[]string { return &c.Awards }),
	list("speakingEngagements", func(c *Company) *[]string { return &c.SpeakingEngagements }),
	list("technologyStack", func(c *Company) *[]string { return &c.TechnologyStack }),
	list("patents", func(c *Company) *[]string { return &c.Patents }),
	text("rdInvestment", func(c *Company) *string { return &c.RDInvestment }),
	list("innovationAreas", func(c *Company) *[]string { return &c.InnovationAreas }),
	list("techPartnerships", func(c *Company) *[]string { return &c.TechPartnerships }),
	text("esgScore", func(c *Company) *string { return &c.ESGScore }),
	list("sustainabilityInitiatives", func(c *Company) *[]string { return &c.SustainabilityInitiatives }),
	list("corporateValues", func(c *Company) *[]string { return &c.CorporateValues }),
	list("diversityInclusion", func(c *Company) *[]string { return &c.DiversityInclusion }),
	list("socialImpact", func(c *Company) *[]string { return &c.SocialImpact }),
	list("officeLocations", func(c *Company) *[]string { return &c.OfficeLocations }),
	text("remoteWorkPolicy", func(c *Company) *string { return &c.RemoteWorkPolicy }),
	text("workCulture", func(c *Company) *string { return &c.WorkCulture }),
	list("benefits", func(c *Company) *[]string { return &c.Benefits }),
	text("hiringStatus", func(c *Company) *string { return &c.HiringStatus }),
	newField("swotAnalysis", KindSWOT, func(c *Company) **SWOT { return &c.SWOTAnalysis },
		func(v *SWOT) bool { return !v.Empty() }),
	list("riskFactors", func(c *Company) *[]string { return &c.RiskFactors }),
	text("growthStrategy", func(c *Company) *string { return &c.GrowthStrategy }),
	text("investmentThesis", func(c *Company) *string { return &c.InvestmentThesis }),
	list("dueDiligenceNotes", func(c *Company) *[]string { return &c.DueDiligenceNotes }),
}

var (
	fieldTable  []Field
	fieldByName map[string]Field
)

func init() {
	fieldTable = make([]Field, 0, len(RequiredFields)+len(OptionalFields)+len(DetailFields))
	fieldTable = append(fieldTable, RequiredFields...)
	fieldTable = append(fieldTable, OptionalFields...)
	fieldTable = append(fieldTable, DetailFields...)

	fieldByName = make(map[string]Field, len(fieldTable))
	for _, f := range fieldTable {
		fieldByName[f.Name] = f
	}
}

// Fields returns every mergeable profile field in a stable order:
// required tier, optional tier, then details.
func Fields() []Field {
	out := make([]Field, len(fieldTable))
	copy(out, fieldTable)
	return out
}

// LookupField returns the profile field with the given wire name.
func LookupField(name string) (Field, bool) {
	f, ok := fieldByName[name]
	return f, ok
}
