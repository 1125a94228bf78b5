package model

import "time"

// Movement directions.
const (
	MoveUp     = "up"
	MoveDown   = "down"
	MoveStable = "stable"
	MoveNew    = "new"
)

// Ranking is the ordered list of tools for one period (YYYY-MM).
type Ranking struct {
	ID               string         `json:"id"`
	Period           string         `json:"period"`
	AlgorithmVersion string         `json:"algorithmVersion"`
	IsCurrent        bool           `json:"isCurrent"`
	PublishedAt      *time.Time     `json:"publishedAt,omitempty"`
	Entries          []RankingEntry `json:"rankings"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type RankingEntry struct {
	ToolID           string    `json:"toolId"`
	ToolSlug         string    `json:"toolSlug"`
	ToolName         string    `json:"toolName"`
	Category         string    `json:"category,omitempty"`
	Rank             int       `json:"rank"`
	Score            float64   `json:"score"`
	FactorScores     Scores    `json:"factorScores,omitempty"`
	DataCompleteness float64   `json:"dataCompleteness,omitempty"`
	NewsImpact       float64   `json:"newsImpact,omitempty"`
	Movement         *Movement `json:"movement,omitempty"`
}

type Movement struct {
	PreviousRank int    `json:"previousRank,omitempty"`
	Change       int    `json:"change"`
	Direction    string `json:"direction"`
}

// Find returns the entry for toolID.
func Find(entries []RankingEntry, toolID string) (RankingEntry, bool) {
	for _, e := range entries {
		if e.ToolID == toolID {
			return e, true
		}
	}

	return RankingEntry{}, false
}

// CloneEntries deep-copies entries so callers can mutate the result.
func CloneEntries(entries []RankingEntry) []RankingEntry {
	out := make([]RankingEntry, len(entries))
	for i, e := range entries {
		e.FactorScores = e.FactorScores.Clone()
		if e.Movement != nil {
			m := *e.Movement
			e.Movement = &m
		}
		out[i] = e
	}

	return out
}
