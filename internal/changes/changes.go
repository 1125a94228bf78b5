// Package changes explains why tools moved between two rankings.
package changes

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// Change categories.
const (
	NewEntry     = "new_entry"
	MajorRise    = "major_rise"
	Rise         = "rise"
	Stable       = "stable"
	Decline      = "decline"
	MajorDecline = "major_decline"
	Dropped      = "dropped"
)

const significantFactorChange = 0.5

type FactorChange struct {
	Factor        model.Factor `json:"factor"`
	PreviousValue float64      `json:"previousValue"`
	CurrentValue  float64      `json:"currentValue"`
	Change        float64      `json:"change"`
	PercentChange float64      `json:"percentChange"`
	Impact        float64      `json:"impact"`
}

// Analysis explains the movement of one tool.
type Analysis struct {
	ToolID             string         `json:"toolId"`
	ToolName           string         `json:"toolName"`
	PreviousRank       int            `json:"previousRank"`
	CurrentRank        int            `json:"currentRank"`
	RankChange         int            `json:"rankChange"`
	PreviousScore      float64        `json:"previousScore"`
	CurrentScore       float64        `json:"currentScore"`
	ScoreChange        float64        `json:"scoreChange"`
	PercentScoreChange float64        `json:"percentScoreChange"`
	PrimaryReason      string         `json:"primaryReason"`
	SecondaryReasons   []string       `json:"secondaryReasons"`
	FactorChanges      []FactorChange `json:"factorChanges"`
	Narrative          string         `json:"narrativeExplanation"`
	Category           string         `json:"changeCategory"`
}

// Analyzer weighs factor changes with the engine's weights.
type Analyzer struct {
	weights algorithm.Weights
}

func NewAnalyzer(w algorithm.Weights) *Analyzer {
	return &Analyzer{weights: w}
}

// Analyze explains the move of current relative to previous; previous is
// nil for tools entering the ranking.
func (a *Analyzer) Analyze(current model.RankingEntry, previous *model.RankingEntry) Analysis {
	res := Analysis{
		ToolID:       current.ToolID,
		ToolName:     current.ToolName,
		CurrentRank:  current.Rank,
		CurrentScore: current.Score,
	}

	var prevFactors model.Scores
	if previous != nil {
		res.PreviousRank = previous.Rank
		res.PreviousScore = previous.Score
		res.RankChange = previous.Rank - current.Rank
		prevFactors = previous.FactorScores
	}
	res.ScoreChange = algorithm.Round(current.Score-res.PreviousScore, 3)
	res.PercentScoreChange = percent(res.ScoreChange, res.PreviousScore)

	res.Category = categorize(res.RankChange, previous == nil)
	res.FactorChanges = a.factorChanges(current.FactorScores, prevFactors)
	res.PrimaryReason, res.SecondaryReasons = reasons(res.FactorChanges, res.Category)
	res.Narrative = narrative(res)

	return res
}

func percent(change, base float64) float64 {
	if base <= 0 {
		return 100
	}

	return algorithm.Round(change/base*100, 2)
}

func categorize(rankChange int, isNew bool) string {
	switch {
	case isNew:
		return NewEntry
	case rankChange >= 5:
		return MajorRise
	case rankChange >= 1:
		return Rise
	case rankChange <= -5:
		return MajorDecline
	case rankChange <= -1:
		return Decline
	}

	return Stable
}

func (a *Analyzer) factorChanges(current, previous model.Scores) []FactorChange {
	out := make([]FactorChange, 0, len(model.Factors))
	for _, f := range model.Factors {
		cur, prev := current[f], previous[f]
		change := cur - prev
		out = append(out, FactorChange{
			Factor:        f,
			PreviousValue: prev,
			CurrentValue:  cur,
			Change:        algorithm.Round(change, 3),
			PercentChange: percent(change, prev),
			Impact:        algorithm.Round(change*a.weights.Get(f), 4),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Impact) > math.Abs(out[j].Impact)
	})

	return out
}

func significant(fcs []FactorChange) []FactorChange {
	var out []FactorChange
	for _, fc := range fcs {
		if math.Abs(fc.Change) > significantFactorChange {
			out = append(out, fc)
		}
	}

	return out
}

func reasons(fcs []FactorChange, category string) (string, []string) {
	sig := significant(fcs)

	if category == NewEntry {
		secondary := []string{}
		for i, fc := range fcs {
			if i == 3 {
				break
			}
			secondary = append(secondary, fmt.Sprintf("Strong %s (%.1f/100)", fc.Factor.Title(), fc.CurrentValue))
		}

		return "New entry to rankings", secondary
	}
	if category == Dropped {
		return "No longer ranked", []string{}
	}
	if len(sig) == 0 {
		return "Minor adjustments across multiple factors", []string{}
	}

	secondary := []string{}
	for i := 1; i < len(sig) && i < 4; i++ {
		secondary = append(secondary, factorReason(sig[i]))
	}

	return factorReason(sig[0]), secondary
}

func factorReason(fc FactorChange) string {
	direction := "declined"
	if fc.Change > 0 {
		direction = "improved"
	}
	values := fmt.Sprintf("(%.1f → %.1f)", fc.PreviousValue, fc.CurrentValue)
	prefix := ""
	if math.Abs(fc.Change) > 2 {
		prefix = "significantly "
	}

	switch fc.Factor {
	case model.AgenticCapability:
		if fc.Change > 0 {
			return prefix + "improved agentic capabilities " + values
		}

		return prefix + "weaker agentic performance " + values
	case model.Innovation:
		if fc.Change < 0 {
			return "Innovation score decayed over time " + values
		}

		return "New innovations boosted score " + values
	case model.TechnicalPerformance:
		return "Technical benchmarks " + prefix + direction + " " + values
	}

	return fc.Factor.Title() + " " + prefix + direction + " " + values
}

func factorNames(fcs []FactorChange) []string {
	out := make([]string, 0, len(fcs))
	for _, fc := range fcs {
		out = append(out, strings.ToLower(fc.Factor.Title()))
	}

	return out
}

func filterChange(fcs []FactorChange, keep func(float64) bool) []FactorChange {
	var out []FactorChange
	for _, fc := range fcs {
		if keep(fc.Change) {
			out = append(out, fc)
		}
	}

	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}

func narrative(a Analysis) string {
	improvements := filterChange(a.FactorChanges, func(c float64) bool { return c > 1 })
	declines := filterChange(a.FactorChanges, func(c float64) bool { return c < -1 })
	moved := a.RankChange
	if moved < 0 {
		moved = -moved
	}
	reason := strings.ToLower(a.PrimaryReason)

	switch a.Category {
	case MajorRise:
		s := fmt.Sprintf("%s surged %d positions due to %s.", a.ToolName, moved, reason)
		if len(improvements) > 1 {
			s += fmt.Sprintf(" Multiple factors contributed to this rise, including improvements in %s.",
				strings.Join(factorNames(improvements[:2]), " and "))
		}

		return s
	case Rise:
		return fmt.Sprintf("%s climbed %d position%s primarily due to %s.", a.ToolName, moved, plural(moved), reason)
	case MajorDecline:
		s := fmt.Sprintf("%s dropped %d positions. %s.", a.ToolName, moved, a.PrimaryReason)
		if len(declines) > 1 {
			end := min(3, len(declines))
			s += fmt.Sprintf(" Additional factors include declining %s.", strings.Join(factorNames(declines[1:end]), " and "))
		}

		return s
	case Decline:
		return fmt.Sprintf("%s fell %d position%s due to %s.", a.ToolName, moved, plural(moved), reason)
	case Stable:
		if math.Abs(a.ScoreChange) > 0.1 {
			kind := "declines"
			if a.ScoreChange > 0 {
				kind = "improvements"
			}

			return fmt.Sprintf("%s maintained its position despite %s in %s.", a.ToolName, kind, reason)
		}

		return a.ToolName + " held steady with minimal changes across all ranking factors."
	case NewEntry:
		strong := a.FactorChanges
		if len(strong) > 3 {
			strong = strong[:3]
		}

		return fmt.Sprintf("%s enters the rankings with strong scores in %s.", a.ToolName, strings.Join(factorNames(strong), ", "))
	case Dropped:
		return fmt.Sprintf("%s dropped out of the rankings from position %d.", a.ToolName, a.PreviousRank)
	}

	return fmt.Sprintf("%s experienced changes due to %s.", a.ToolName, reason)
}

// Compare analyses every tool present in either list. Tools only present
// in previous are reported as dropped.
func (a *Analyzer) Compare(current, previous []model.RankingEntry) []Analysis {
	out := make([]Analysis, 0, len(current))
	for _, c := range current {
		if p, ok := model.Find(previous, c.ToolID); ok {
			out = append(out, a.Analyze(c, &p))
		} else {
			out = append(out, a.Analyze(c, nil))
		}
	}

	for _, p := range previous {
		if _, ok := model.Find(current, p.ToolID); ok {
			continue
		}
		d := Analysis{
			ToolID:             p.ToolID,
			ToolName:           p.ToolName,
			PreviousRank:       p.Rank,
			PreviousScore:      p.Score,
			ScoreChange:        -p.Score,
			PercentScoreChange: -100,
			Category:           Dropped,
			FactorChanges:      a.factorChanges(nil, p.FactorScores),
		}
		d.PrimaryReason, d.SecondaryReasons = reasons(d.FactorChanges, Dropped)
		d.Narrative = narrative(d)
		out = append(out, d)
	}

	return out
}
