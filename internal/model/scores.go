package model

// Factor names one input of the ranking model.
type Factor string

const (
	AgenticCapability    Factor = "agenticCapability"
	Innovation           Factor = "innovation"
	TechnicalPerformance Factor = "technicalPerformance"
	DeveloperAdoption    Factor = "developerAdoption"
	MarketTraction       Factor = "marketTraction"
	BusinessSentiment    Factor = "businessSentiment"
	DevelopmentVelocity  Factor = "developmentVelocity"
	PlatformResilience   Factor = "platformResilience"

	// Overall is only meaningful in delta maps, where it shifts the final score.
	Overall Factor = "overall"
)

// Factors lists the ranking factors in display order.
var Factors = []Factor{
	AgenticCapability,
	Innovation,
	TechnicalPerformance,
	DeveloperAdoption,
	MarketTraction,
	BusinessSentiment,
	DevelopmentVelocity,
	PlatformResilience,
}

var factorTitles = map[Factor]string{
	AgenticCapability:    "Agentic Capability",
	Innovation:           "Innovation",
	TechnicalPerformance: "Technical Performance",
	DeveloperAdoption:    "Developer Adoption",
	MarketTraction:       "Market Traction",
	BusinessSentiment:    "Business Sentiment",
	DevelopmentVelocity:  "Development Velocity",
	PlatformResilience:   "Platform Resilience",
	Overall:              "Overall",
}

// Title returns the human readable factor name.
func (f Factor) Title() string {
	if t, ok := factorTitles[f]; ok {
		return t
	}

	return string(f)
}

// Valid reports whether f is a ranking factor or Overall.
func (f Factor) Valid() bool {
	_, ok := factorTitles[f]

	return ok
}

// Scores maps factors to 0-100 values (or signed deltas).
type Scores map[Factor]float64

// Clone returns an independent copy.
func (s Scores) Clone() Scores {
	if s == nil {
		return nil
	}
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}
