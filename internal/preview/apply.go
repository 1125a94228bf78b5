package preview

import (
	"math"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// Apply adds the score changes to a copy of entries and re-ranks it.
func Apply(entries []model.RankingEntry, changes []Change) []model.RankingEntry {
	return shift(entries, changes, 1)
}

// Revert subtracts previously applied score changes and re-ranks.
func Revert(entries []model.RankingEntry, changes []Change) []model.RankingEntry {
	return shift(entries, changes, -1)
}

func shift(entries []model.RankingEntry, changes []Change, sign float64) []model.RankingEntry {
	delta := make(map[string]float64, len(changes))
	for _, c := range changes {
		delta[c.ToolID] += c.ScoreChange
	}

	out := model.CloneEntries(entries)
	for i := range out {
		if d, ok := delta[out[i].ToolID]; ok {
			out[i].Score = algorithm.Round(math.Max(0, math.Min(100, out[i].Score+sign*d)), 3)
		}
	}

	out = algorithm.Rerank(out)
	for i := range out {
		updateMovement(&out[i])
	}

	return out
}

// updateMovement keeps the period-over-period movement in line with a new rank.
func updateMovement(e *model.RankingEntry) {
	m := e.Movement
	if m == nil || m.Direction == model.MoveNew || m.PreviousRank == 0 {
		return
	}

	m.Change = m.PreviousRank - e.Rank
	switch {
	case m.Change > 0:
		m.Direction = model.MoveUp
	case m.Change < 0:
		m.Direction = model.MoveDown
	default:
		m.Direction = model.MoveStable
	}
}

// ChangesFromRecords turns stored per-tool changes back into preview changes.
func ChangesFromRecords(records []model.ArticleChange) []Change {
	out := make([]Change, 0, len(records))
	for _, r := range records {
		out = append(out, Change{
			ToolID:         r.ToolID,
			ToolName:       r.ToolName,
			CurrentRank:    r.OldRank,
			PredictedRank:  r.NewRank,
			RankChange:     r.RankChange,
			CurrentScore:   r.OldScore,
			PredictedScore: r.NewScore,
			ScoreChange:    r.ScoreChange,
			Metrics:        r.MetricChanges,
			Reason:         r.ChangeReason,
		})
	}

	return out
}
