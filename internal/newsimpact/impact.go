// Package newsimpact turns analysed news articles into bounded score
// adjustments for individual tools.
package newsimpact

import (
	"math"
	"sort"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

const (
	// MaxArticles is how many of the most recent mentioning articles count.
	MaxArticles = 10
	// DecayDays is the e-folding time of an article's influence.
	DecayDays = 90
	// MaxTotalImpact bounds TotalImpact in both directions.
	MaxTotalImpact = 2.0

	significantEventThreshold = 7
	maxSignificantEvents      = 5
)

// Impact aggregates the news influence on one tool.
type Impact struct {
	ToolID            string             `json:"toolId"`
	TotalImpact       float64            `json:"totalImpact"`
	Articles          int                `json:"articleCount"`
	LastNewsDate      *time.Time         `json:"lastNewsDate,omitempty"`
	SignificantEvents []SignificantEvent `json:"significantEvents,omitempty"`
	Adjustments       Adjustments        `json:"adjustments"`
}

type SignificantEvent struct {
	Event  string    `json:"event"`
	Date   time.Time `json:"date"`
	Impact string    `json:"impact"`
}

// Decay returns the weight of news published at t, seen from cutoff.
func Decay(t, cutoff time.Time) float64 {
	ageDays := math.Max(0, cutoff.Sub(t).Hours()/24)

	return math.Exp(-ageDays / DecayDays)
}

// ArticleImpact is the raw contribution of one mention before decay.
func ArticleImpact(a model.Article, m model.ToolMention) float64 {
	return m.Sentiment * m.Relevance * (0.5 + a.ImportanceScore/20)
}

// relevant returns the active articles mentioning toolID published on or
// before cutoff, newest first, at most MaxArticles.
func relevant(toolID string, articles []model.Article, cutoff time.Time) []model.Article {
	out := make([]model.Article, 0, MaxArticles)
	for _, a := range articles {
		if a.Status != model.ArticleActive || a.PublishedAt.After(cutoff) {
			continue
		}
		if _, ok := a.Mentions(toolID, ""); ok {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if len(out) > MaxArticles {
		out = out[:MaxArticles]
	}

	return out
}

// ForTool computes the news impact for toolID as of cutoff.
func ForTool(toolID string, articles []model.Article, cutoff time.Time) Impact {
	impact := Impact{ToolID: toolID}

	var adj Adjustments
	for _, a := range relevant(toolID, articles, cutoff) {
		m, _ := a.Mentions(toolID, "")
		decay := Decay(a.PublishedAt, cutoff)

		impact.TotalImpact += ArticleImpact(a, m) * decay
		impact.Articles++
		if impact.LastNewsDate == nil {
			published := a.PublishedAt
			impact.LastNewsDate = &published
		}

		for _, q := range a.Qualitative {
			if q.Tool != m.Tool {
				continue
			}
			adj = adj.add(QualitativeAdjustments(q).scale(decay))

			for _, ev := range q.KeyEvents {
				if ev.Significance >= significantEventThreshold && len(impact.SignificantEvents) < maxSignificantEvents {
					impact.SignificantEvents = append(impact.SignificantEvents, SignificantEvent{
						Event:  ev.Event,
						Date:   a.PublishedAt,
						Impact: ev.Impact,
					})
				}
			}
		}
	}

	impact.TotalImpact = round2(math.Max(-MaxTotalImpact, math.Min(MaxTotalImpact, impact.TotalImpact)))
	impact.Adjustments = adj.capped()

	return impact
}

// ForTools computes the impact of every tool in toolIDs in one pass over articles.
func ForTools(toolIDs []string, articles []model.Article, cutoff time.Time) map[string]Impact {
	out := make(map[string]Impact, len(toolIDs))
	for _, id := range toolIDs {
		out[id] = ForTool(id, articles, cutoff)
	}

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
