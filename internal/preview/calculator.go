package preview

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/toolmap"
)

// MaxPoints bounds the score change one article can cause for one tool.
const MaxPoints = 10.0

var fundingAmountRe = regexp.MustCompile(`(?i)\$(\d+)([mb])`)

// Change is the predicted effect of an article on one ranked tool.
// RankChange is positive when the tool moves up.
type Change struct {
	ToolID         string                        `json:"toolId"`
	ToolName       string                        `json:"toolName"`
	CurrentRank    int                           `json:"currentRank"`
	PredictedRank  int                           `json:"predictedRank"`
	RankChange     int                           `json:"rankChange"`
	CurrentScore   float64                       `json:"currentScore"`
	PredictedScore float64                       `json:"predictedScore"`
	ScoreChange    float64                       `json:"scoreChange"`
	Metrics        map[string]model.MetricChange `json:"metrics"`
	Reason         string                        `json:"reason,omitempty"`
}

type NewTool struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type NewCompany struct {
	Name string `json:"name"`
}

type Summary struct {
	ToolsAffected      int     `json:"totalToolsAffected"`
	NewTools           int     `json:"totalNewTools"`
	NewCompanies       int     `json:"totalNewCompanies"`
	AverageRankChange  float64 `json:"averageRankChange"`
	AverageScoreChange float64 `json:"averageScoreChange"`
}

// Result is the full dry-run outcome.
type Result struct {
	Changes      []Change             `json:"predictedChanges"`
	NewTools     []NewTool            `json:"newTools"`
	NewCompanies []NewCompany         `json:"newCompanies"`
	Summary      Summary              `json:"summary"`
	Entries      []model.RankingEntry `json:"-"`
}

// Calculator predicts ranking changes. It holds no state besides the mapper.
type Calculator struct {
	mapper *toolmap.Mapper
}

func NewCalculator(m *toolmap.Mapper) *Calculator {
	if m == nil {
		m = toolmap.New()
	}

	return &Calculator{mapper: m}
}

// Points is the raw score change of one mention, before the per-tool cap.
func Points(m model.ToolMention, importance float64) float64 {
	pts := m.Relevance * 3 * m.Sentiment * (0.5 + importance/20)
	ctx := strings.ToLower(m.Context)

	if m.Sentiment > 0 {
		if strings.Contains(ctx, "funding") {
			pts += fundingBonus(ctx)
		}
		if containsAny(ctx, "launch", "release", "announces") {
			pts += 2
		}
		if containsAny(ctx, "partnership", "acquisition") {
			pts += 1.5
		}
		if containsAny(ctx, "breakthrough", "revolutionary") {
			pts += 2.5
		}
	}

	if m.Sentiment < 0 {
		if containsAny(ctx, "breach", "hack", "vulnerability") {
			pts -= 3
		}
		if containsAny(ctx, "lawsuit", "sued", "litigation") {
			pts -= 2
		}
		if containsAny(ctx, "shutdown", "discontinued", "cancelled") {
			pts -= 5
		}
		if containsAny(ctx, "layoff", "downsizing") {
			pts -= 1.5
		}
	}

	return pts
}

func fundingBonus(ctx string) float64 {
	m := fundingAmountRe.FindStringSubmatch(ctx)
	if m == nil {
		return 0
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	millions := float64(amount)
	if strings.EqualFold(m[2], "b") {
		millions *= 1000
	}

	switch {
	case millions >= 400:
		return 4
	case millions >= 200:
		return 3
	case millions >= 100:
		return 2
	case millions >= 50:
		return 1.5
	}

	return 0.5
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}

func (c *Calculator) find(entries []model.RankingEntry, mention string) (model.RankingEntry, bool) {
	normalized := c.mapper.Normalize(mention)
	for _, e := range entries {
		if e.ToolName == normalized || e.ToolName == mention || strings.EqualFold(e.ToolSlug, mention) {
			return e, true
		}
	}

	return model.RankingEntry{}, false
}

type accumulated struct {
	entry     model.RankingEntry
	points    float64
	sentiment float64
	relevance float64
	contexts  []string
}

// Calculate predicts the effect of a on the ranking entries. knownTools and
// knownCompanies are the catalogue names used to spot new entities.
func (c *Calculator) Calculate(a Analysis, entries []model.RankingEntry, knownTools, knownCompanies []string) Result {
	var order []string
	acc := map[string]*accumulated{}

	for _, m := range a.ToolMentions {
		e, ok := c.find(entries, m.Tool)
		if !ok {
			continue
		}
		t, seen := acc[e.ToolID]
		if !seen {
			t = &accumulated{entry: e}
			acc[e.ToolID] = t
			order = append(order, e.ToolID)
		}
		t.points += Points(m, a.ImportanceScore)
		t.sentiment = m.Sentiment
		t.relevance = math.Max(t.relevance, m.Relevance)
		if m.Context != "" {
			t.contexts = append(t.contexts, m.Context)
		}
	}

	changes := make([]Change, 0, len(order))
	for _, id := range order {
		t := acc[id]
		pts := algorithm.Round(math.Max(-MaxPoints, math.Min(MaxPoints, t.points)), 3)
		predicted := algorithm.Round(math.Max(0, math.Min(100, t.entry.Score+pts)), 3)
		changes = append(changes, Change{
			ToolID:         id,
			ToolName:       t.entry.ToolName,
			CurrentRank:    t.entry.Rank,
			CurrentScore:   t.entry.Score,
			PredictedScore: predicted,
			ScoreChange:    algorithm.Round(predicted-t.entry.Score, 3),
			Metrics: map[string]model.MetricChange{
				"sentiment": {New: t.sentiment, Change: t.sentiment},
				"relevance": {New: t.relevance, Change: t.relevance},
				"score":     {Old: t.entry.Score, New: predicted, Change: algorithm.Round(predicted-t.entry.Score, 3)},
			},
			Reason: reason(pts, t.contexts),
		})
	}

	predicted := Apply(entries, changes)
	for i := range changes {
		if e, ok := model.Find(predicted, changes[i].ToolID); ok {
			changes[i].PredictedRank = e.Rank
			changes[i].RankChange = changes[i].CurrentRank - e.Rank
		}
	}

	newTools, newCompanies := c.NewEntities(a, knownTools, knownCompanies)

	return Result{
		Changes:      changes,
		NewTools:     newTools,
		NewCompanies: newCompanies,
		Summary:      summarize(changes, len(newTools), len(newCompanies)),
		Entries:      predicted,
	}
}

func reason(pts float64, contexts []string) string {
	direction := "neutral"
	switch {
	case pts > 0:
		direction = "positive"
	case pts < 0:
		direction = "negative"
	}
	if len(contexts) == 0 {
		return direction + " coverage"
	}

	return direction + " coverage: " + strings.Join(contexts, "; ")
}

// NewEntities lists mentioned tools and companies missing from the catalogue.
func (c *Calculator) NewEntities(a Analysis, knownTools, knownCompanies []string) ([]NewTool, []NewCompany) {
	tools := lowerSet(knownTools)
	companies := lowerSet(knownCompanies)

	newTools := []NewTool{}
	for _, m := range a.ToolMentions {
		name := c.mapper.Normalize(m.Tool)
		key := strings.ToLower(name)
		if tools[key] {
			continue
		}
		tools[key] = true
		newTools = append(newTools, NewTool{Name: name, Category: toolmap.InferCategory(m.Tool, m.Context)})
	}

	newCompanies := []NewCompany{}
	for _, m := range a.CompanyMentions {
		key := strings.ToLower(m.Company)
		if key == "" || companies[key] {
			continue
		}
		companies[key] = true
		newCompanies = append(newCompanies, NewCompany{Name: m.Company})
	}

	return newTools, newCompanies
}

func lowerSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}

	return set
}

func summarize(changes []Change, newTools, newCompanies int) Summary {
	s := Summary{ToolsAffected: len(changes), NewTools: newTools, NewCompanies: newCompanies}
	if len(changes) == 0 {
		return s
	}

	var rank, score float64
	for _, c := range changes {
		rank += float64(c.RankChange)
		score += c.ScoreChange
	}
	s.AverageRankChange = algorithm.Round(rank/float64(len(changes)), 2)
	s.AverageScoreChange = algorithm.Round(score/float64(len(changes)), 2)

	return s
}
