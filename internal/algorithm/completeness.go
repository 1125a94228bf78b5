package algorithm

import (
	"strings"
	"unicode/utf8"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// DataCompleteness awards points for each verified metric a tool carries.
// Tools ranked on descriptions alone score low and are penalised through
// the confidence multiplier.
func DataCompleteness(t model.Tool) float64 {
	m := t.Info.Metrics
	var score float64

	if m.GitHubStars > 0 {
		score += 20
	}
	if m.VSCodeInstalls > 0 {
		score += 20
	}
	if m.NPMDownloads > 0 {
		score += 20
	}
	if m.PyPIDownloads > 0 {
		score += 15
	}

	if m.Users > 0 {
		score += 15
	}
	if m.MonthlyARR > 0 {
		score += 15
	}
	if m.SWEBench.Verified > 0 || m.SWEBench.Lite > 0 || m.SWEBench.Full > 0 {
		score += 15
	}

	if len(t.Info.Description) > 100 || len(t.Info.Summary) > 100 {
		score += 10
	}
	if len(t.Info.Features) > 5 {
		score += 10
	}
	if t.Info.Company != "" {
		score += 10
	}
	if t.Info.Business.PricingModel != "" {
		score += 10
	}

	return min(100, score)
}

// ConfidenceMultiplier maps completeness 0..100 onto 0.7..1.0.
func ConfidenceMultiplier(completeness float64) float64 {
	return 0.7 + completeness/100*0.3
}

// Tiebreakers are deterministic 0-100 signals used to separate tools whose
// weighted scores are equal.
type Tiebreakers struct {
	FeatureCount       float64 `json:"featureCount"`
	DescriptionQuality float64 `json:"descriptionQuality"`
	PricingTier        float64 `json:"pricingTier"`
	Alphabetical       float64 `json:"alphabeticalOrder"`
}

// Adjustment folds the tiebreakers into a value far below score precision.
func (tb Tiebreakers) Adjustment() float64 {
	return tb.FeatureCount*0.00001 +
		tb.DescriptionQuality*0.000001 +
		tb.PricingTier*0.0000001 +
		tb.Alphabetical*0.00000001
}

var qualityKeywords = []string{
	"autonomous", "enterprise", "scalable", "production", "integration",
	"architecture", "performance", "security", "workflow", "collaboration",
}

func tiebreakers(t model.Tool) Tiebreakers {
	return Tiebreakers{
		FeatureCount:       min(100, float64(len(t.Info.Features))*5),
		DescriptionQuality: descriptionQuality(t.Info) * 2,
		PricingTier:        pricingTier(t.Info.Business) * 2,
		Alphabetical:       alphabetical(t.Name),
	}
}

func descriptionQuality(info model.ToolInfo) float64 {
	text := info.Description + " " + info.Summary + " " + info.Overview

	var score float64
	switch n := len(text); {
	case n >= 1000:
		score = 20
	case n >= 500:
		score = 15
	case n >= 250:
		score = 10
	case n >= 100:
		score = 5
	default:
		score = 1
	}

	score += float64(countKeywords(text, qualityKeywords)) * 2

	return min(50, score)
}

func pricingTier(b model.Business) float64 {
	var score float64
	switch b.PricingModel {
	case "subscription", "freemium":
		score = 10
	case "enterprise":
		score = 15
	case "paid":
		score = 8
	case "free":
		score = 5
	}

	switch {
	case b.BasePrice >= 100:
		score += 20
	case b.BasePrice >= 50:
		score += 15
	case b.BasePrice >= 20:
		score += 10
	case b.BasePrice >= 10:
		score += 5
	}

	if b.FreeTier && b.BasePrice > 0 {
		score += 5
	}
	if b.EnterprisePricing {
		score += 10
	}

	return min(50, score)
}

// alphabetical favours names earlier in the alphabet: 'a' is 100, 'z' is 0.
// The value is not bounded, digits rank above letters and anything past 'z'
// goes negative.
func alphabetical(name string) float64 {
	first, _ := utf8.DecodeRuneInString(strings.ToLower(name))
	if first == utf8.RuneError {
		return 0
	}

	return float64(122-first) * 4
}
