package newsimpact

import (
	"math"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// Adjustments are factor boosts derived from qualitative article signals.
type Adjustments struct {
	Innovation float64 `json:"innovationBoost"`
	Sentiment  float64 `json:"businessSentimentAdjust"`
	Velocity   float64 `json:"developmentVelocityBoost"`
	Traction   float64 `json:"marketTractionBoost"`
	Technical  float64 `json:"technicalPerformanceBoost"`
}

func (a Adjustments) add(b Adjustments) Adjustments {
	return Adjustments{
		Innovation: a.Innovation + b.Innovation,
		Sentiment:  a.Sentiment + b.Sentiment,
		Velocity:   a.Velocity + b.Velocity,
		Traction:   a.Traction + b.Traction,
		Technical:  a.Technical + b.Technical,
	}
}

func (a Adjustments) scale(k float64) Adjustments {
	return Adjustments{
		Innovation: a.Innovation * k,
		Sentiment:  a.Sentiment * k,
		Velocity:   a.Velocity * k,
		Traction:   a.Traction * k,
		Technical:  a.Technical * k,
	}
}

// capped applies the aggregate limits.
func (a Adjustments) capped() Adjustments {
	return Adjustments{
		Innovation: round2(math.Min(3, a.Innovation)),
		Sentiment:  round2(math.Max(-2, math.Min(2, a.Sentiment))),
		Velocity:   round2(math.Min(2, a.Velocity)),
		Traction:   round2(math.Min(2, a.Traction)),
		Technical:  round2(math.Min(1, a.Technical)),
	}
}

var launchWeight = map[string]float64{
	"breakthrough": 1.0,
	"major":        0.6,
}

var cadenceMultiplier = map[string]float64{
	"accelerating": 1.5,
	"steady":       1.0,
	"slowing":      0.5,
}

var positionMultiplier = map[string]float64{
	"leader":     1.2,
	"challenger": 1.0,
	"follower":   0.8,
}

func lookup(m map[string]float64, key string, fallback float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}

	return fallback
}

// QualitativeAdjustments converts the signals of one article about one tool
// into factor boosts, rounded to two decimals.
func QualitativeAdjustments(q model.Qualitative) Adjustments {
	var launches float64
	for _, l := range q.ProductLaunches {
		launches += l.Impact * lookup(launchWeight, l.Significance, 0.3)
	}

	var milestones, technical float64
	for _, m := range q.TechnicalMilestones {
		milestones += m.Impact
		if m.Category == "performance" || m.Category == "capability" {
			technical += m.Impact
		}
	}

	var partnerships float64
	for _, p := range q.Partnerships {
		partnerships += p.Significance
	}

	s := q.Sentiment
	sentiment := (s.Overall*2 + s.Product + s.Future + s.Competition*0.5) / 4

	return Adjustments{
		Innovation: round2(math.Min(2, (launches/10+milestones/10)*0.5)),
		Sentiment:  round2(sentiment),
		Velocity:   round2(q.Development.FeatureVelocity / 10 * lookup(cadenceMultiplier, q.Development.ReleaseCadence, 0.8)),
		Traction:   round2(partnerships / 10 * lookup(positionMultiplier, q.Positioning, 0.6)),
		Technical:  round2(technical / 20),
	}
}
