// Package trending follows the top tools across ranking periods.
package trending

import (
	"sort"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

const DefaultTopN = 10

type Tool struct {
	ToolID          string `json:"toolId"`
	ToolName        string `json:"toolName"`
	PeriodsInTop    int    `json:"periodsInTop"`
	FirstAppearance string `json:"firstAppearance"`
	LastAppearance  string `json:"lastAppearance"`
	BestPosition    int    `json:"bestPosition"`
	WorstPosition   int    `json:"worstPosition"`
	CurrentPosition int    `json:"currentPosition,omitempty"`
}

// Row is one chart point; a nil position means the tool was not tracked
// in that period.
type Row struct {
	Period    string          `json:"period"`
	Date      string          `json:"date"`
	Positions map[string]*int `json:"positions"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Metadata struct {
	TotalPeriods int       `json:"totalPeriods"`
	DateRange    DateRange `json:"dateRange"`
	TopN         int       `json:"topToolsCount"`
}

type Result struct {
	Periods  []string `json:"periods"`
	Tools    []Tool   `json:"tools"`
	Chart    []Row    `json:"chartData"`
	Metadata Metadata `json:"metadata"`
}

// FormatPeriod renders "2025-01" as "Jan 2025" and "2025-01-02" as
// "Jan 2, 2025"; other strings are returned unchanged.
func FormatPeriod(period string) string {
	if t, err := time.Parse("2006-01", period); err == nil {
		return t.Format("Jan 2006")
	}
	if t, err := time.Parse("2006-01-02", period); err == nil {
		return t.Format("Jan 2, 2006")
	}

	return period
}

// Analyze tracks every tool that reached the top N in any period, plus the
// current top N across all periods so their rise is visible.
func Analyze(rankings []model.Ranking, topN int) Result {
	if topN <= 0 {
		topN = DefaultTopN
	}
	res := Result{Periods: []string{}, Tools: []Tool{}, Chart: []Row{}, Metadata: Metadata{TopN: topN}}
	if len(rankings) == 0 {
		return res
	}

	sorted := make([]model.Ranking, len(rankings))
	copy(sorted, rankings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Period < sorted[j].Period })

	inTop := func(rank int) bool { return rank > 0 && rank <= topN }

	latest := sorted[len(sorted)-1]
	current := map[string]bool{}
	for _, e := range latest.Entries {
		if inTop(e.Rank) {
			current[e.ToolID] = true
		}
	}

	tools := map[string]*Tool{}
	var order []string
	for i, r := range sorted {
		row := Row{Period: r.Period, Date: FormatPeriod(r.Period), Positions: map[string]*int{}}
		isLatest := i == len(sorted)-1

		for _, e := range r.Entries {
			if !inTop(e.Rank) && !current[e.ToolID] {
				continue
			}
			pos := e.Rank
			row.Positions[e.ToolID] = &pos

			t, ok := tools[e.ToolID]
			if !ok {
				t = &Tool{
					ToolID:          e.ToolID,
					ToolName:        e.ToolName,
					FirstAppearance: r.Period,
					BestPosition:    pos,
					WorstPosition:   pos,
				}
				tools[e.ToolID] = t
				order = append(order, e.ToolID)
			}
			if inTop(pos) {
				t.PeriodsInTop++
			}
			t.LastAppearance = r.Period
			t.BestPosition = min(t.BestPosition, pos)
			t.WorstPosition = max(t.WorstPosition, pos)
			if isLatest {
				t.CurrentPosition = pos
			}
		}

		res.Periods = append(res.Periods, r.Period)
		res.Chart = append(res.Chart, row)
	}

	for _, id := range order {
		res.Tools = append(res.Tools, *tools[id])
	}
	sort.SliceStable(res.Tools, func(i, j int) bool {
		a, b := res.Tools[i], res.Tools[j]
		switch {
		case a.CurrentPosition > 0 && b.CurrentPosition > 0:
			return a.CurrentPosition < b.CurrentPosition
		case a.CurrentPosition > 0:
			return true
		case b.CurrentPosition > 0:
			return false
		case a.BestPosition != b.BestPosition:
			return a.BestPosition < b.BestPosition
		}

		return a.PeriodsInTop > b.PeriodsInTop
	})

	for _, row := range res.Chart {
		for _, t := range res.Tools {
			if _, ok := row.Positions[t.ToolID]; !ok {
				row.Positions[t.ToolID] = nil
			}
		}
	}

	res.Metadata.TotalPeriods = len(sorted)
	res.Metadata.DateRange = DateRange{Start: sorted[0].Period, End: latest.Period}

	return res
}
