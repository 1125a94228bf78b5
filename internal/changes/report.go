package changes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

const majorMoversLimit = 5

type Trend struct {
	Improving int `json:"improving"`
	Declining int `json:"declining"`
}

type MajorMovers struct {
	Rises    []Analysis `json:"rises"`
	Declines []Analysis `json:"declines"`
}

// Report summarises a set of analyses for one period.
type Report struct {
	Summary          string                 `json:"summary"`
	MajorMovers      MajorMovers            `json:"majorMovers"`
	FactorTrends     map[model.Factor]Trend `json:"factorTrends"`
	NarrativeSummary string                 `json:"narrativeSummary"`
	Analyses         []Analysis             `json:"analyses,omitempty"`
}

func byCategory(analyses []Analysis, category string) []Analysis {
	var out []Analysis
	for _, a := range analyses {
		if a.Category == category {
			out = append(out, a)
		}
	}

	return out
}

// BuildReport aggregates analyses into movers, factor trends and a narrative.
func BuildReport(analyses []Analysis) Report {
	rises := byCategory(analyses, MajorRise)
	sort.SliceStable(rises, func(i, j int) bool { return rises[i].RankChange > rises[j].RankChange })
	declines := byCategory(analyses, MajorDecline)
	sort.SliceStable(declines, func(i, j int) bool { return declines[i].RankChange < declines[j].RankChange })

	trends := make(map[model.Factor]Trend, len(model.Factors))
	for _, f := range model.Factors {
		trends[f] = Trend{}
	}
	for _, a := range analyses {
		for _, fc := range a.FactorChanges {
			t := trends[fc.Factor]
			switch {
			case fc.Change > significantFactorChange:
				t.Improving++
			case fc.Change < -significantFactorChange:
				t.Declining++
			}
			trends[fc.Factor] = t
		}
	}

	return Report{
		Summary: fmt.Sprintf("%d tools analyzed. %d major rises, %d major declines.",
			len(analyses), len(rises), len(declines)),
		MajorMovers: MajorMovers{
			Rises:    head(rises, majorMoversLimit),
			Declines: head(declines, majorMoversLimit),
		},
		FactorTrends:     trends,
		NarrativeSummary: reportNarrative(analyses, rises, declines, trends),
		Analyses:         analyses,
	}
}

func head(a []Analysis, n int) []Analysis {
	if len(a) > n {
		return a[:n]
	}
	if a == nil {
		return []Analysis{}
	}

	return a
}

func reportNarrative(analyses, rises, declines []Analysis, trends map[model.Factor]Trend) string {
	var b strings.Builder
	b.WriteString("This month's rankings show significant movement across the AI coding tools landscape.")

	if len(rises) > 0 {
		fmt.Fprintf(&b, " %s led the gains, climbing %d positions.", rises[0].ToolName, rises[0].RankChange)
	}
	if len(declines) > 0 {
		fmt.Fprintf(&b, " On the other side, %s experienced the largest drop, falling %d positions.",
			declines[0].ToolName, -declines[0].RankChange)
	}

	var top model.Factor
	best := 0
	for _, f := range model.Factors {
		net := trends[f].Improving - trends[f].Declining
		if abs(net) > abs(best) {
			top, best = f, net
		}
	}
	if best > 5 {
		fmt.Fprintf(&b, " %s emerged as a key differentiator this month, with %d tools showing improvement.",
			top.Title(), trends[top].Improving)
	}

	entries := byCategory(analyses, NewEntry)
	if n := len(entries); n > 0 {
		names := make([]string, 0, 2)
		for _, e := range head(entries, 2) {
			names = append(names, e.ToolName)
		}
		fmt.Fprintf(&b, " %d new tool%s entered the rankings, including %s.", n, plural(n), strings.Join(names, " and "))
	}

	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
