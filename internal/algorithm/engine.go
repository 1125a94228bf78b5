package algorithm

import (
	"math"
	"sort"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/newsimpact"
)

const (
	Version = "v7.5"
	Name    = "Data-Driven Confidence Scoring with Missing Data Penalty"

	// qualitativePoints converts one unit of a qualitative news boost into factor points.
	qualitativePoints = 5
)

// Engine scores tools with a fixed weight profile. It is safe for concurrent use.
type Engine struct {
	weights Weights
}

func New(w Weights) *Engine {
	return &Engine{weights: w}
}

func (e *Engine) Weights() Weights {
	return e.weights
}

// ToolScore is the engine output for one tool.
type ToolScore struct {
	ToolID               string       `json:"toolId"`
	ToolSlug             string       `json:"toolSlug"`
	ToolName             string       `json:"toolName"`
	Category             string       `json:"category"`
	Overall              float64      `json:"overallScore"`
	Factors              model.Scores `json:"factorScores"`
	Tiebreakers          Tiebreakers  `json:"tiebreakers"`
	DataCompleteness     float64      `json:"dataCompleteness"`
	ConfidenceMultiplier float64      `json:"confidenceMultiplier"`
	NewsImpact           float64      `json:"newsImpact"`
	AlgorithmVersion     string       `json:"algorithmVersion"`
}

// Score computes the factor scores and overall score of t as of now.
// impact may be nil when no news is available for the tool.
func (e *Engine) Score(t model.Tool, now time.Time, impact *newsimpact.Impact) ToolScore {
	var totalImpact float64
	var adj newsimpact.Adjustments
	if impact != nil && !math.IsNaN(impact.TotalImpact) {
		totalImpact = impact.TotalImpact
		adj = impact.Adjustments
	}

	factors := model.Scores{
		model.AgenticCapability:    agenticCapability(t),
		model.Innovation:           innovation(t, now) + adj.Innovation*qualitativePoints,
		model.TechnicalPerformance: technicalPerformance(t) + adj.Technical*qualitativePoints,
		model.DeveloperAdoption:    developerAdoption(t),
		model.MarketTraction:       marketTraction(t) + adj.Traction*qualitativePoints,
		model.BusinessSentiment:    businessSentiment(t, totalImpact) + adj.Sentiment*qualitativePoints,
		model.DevelopmentVelocity:  developmentVelocity(t) + adj.Velocity*qualitativePoints,
		model.PlatformResilience:   platformResilience(t),
	}
	for f, v := range factors {
		factors[f] = clamp(v+t.Delta[f], 0, 100)
	}

	var overall float64
	for _, f := range model.Factors {
		overall += factors[f] * e.weights.Get(f)
	}

	completeness := DataCompleteness(t)
	confidence := ConfidenceMultiplier(completeness)
	overall = clamp(overall*confidence+t.Delta[model.Overall], 0, 100)

	tb := tiebreakers(t)

	return ToolScore{
		ToolID:               t.ID,
		ToolSlug:             t.Slug,
		ToolName:             t.Name,
		Category:             t.Category,
		Overall:              Round(clamp(overall+tb.Adjustment(), 0, 100), 3),
		Factors:              factors,
		Tiebreakers:          tb,
		DataCompleteness:     completeness,
		ConfidenceMultiplier: confidence,
		NewsImpact:           totalImpact,
		AlgorithmVersion:     Version,
	}
}

// Rank orders scores by overall score and assigns 1-based ranks.
// Equal scores fall back to the tiebreakers and then to the tool name.
func (e *Engine) Rank(scores []ToolScore) []model.RankingEntry {
	sorted := make([]ToolScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		if ta, tb := a.Tiebreakers.Adjustment(), b.Tiebreakers.Adjustment(); ta != tb {
			return ta > tb
		}

		return a.ToolName < b.ToolName
	})

	entries := make([]model.RankingEntry, len(sorted))
	for i, s := range sorted {
		entries[i] = model.RankingEntry{
			ToolID:           s.ToolID,
			ToolSlug:         s.ToolSlug,
			ToolName:         s.ToolName,
			Category:         s.Category,
			Rank:             i + 1,
			Score:            s.Overall,
			FactorScores:     s.Factors,
			DataCompleteness: s.DataCompleteness,
			NewsImpact:       s.NewsImpact,
		}
	}

	return entries
}

// Rerank sorts a copy of entries by score (then name) and renumbers ranks.
func Rerank(entries []model.RankingEntry) []model.RankingEntry {
	out := model.CloneEntries(entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}

		return out[i].ToolName < out[j].ToolName
	})
	for i := range out {
		out[i].Rank = i + 1
	}

	return out
}

// Info describes the algorithm for the public API.
type Info struct {
	Version     string  `json:"version"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weights     Weights `json:"weights"`
}

func (e *Engine) Info() Info {
	return Info{
		Version: Version,
		Name:    Name,
		Description: "Penalizes tools lacking real-world metrics. Tools with verified data " +
			"(GitHub, VS Code, npm, revenue) rank higher than those with only descriptions.",
		Weights: e.weights,
	}
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))

	return math.Round(v*p) / p
}
