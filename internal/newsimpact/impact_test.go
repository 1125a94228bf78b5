package newsimpact

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var cutoff = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func article(id string, published time.Time, sentiment, relevance, importance float64, tools ...string) model.Article {
	a := model.Article{
		ID:              id,
		Title:           "article " + id,
		ImportanceScore: importance,
		PublishedAt:     published,
		Status:          model.ArticleActive,
	}
	for _, tool := range tools {
		a.ToolMentions = append(a.ToolMentions, model.ToolMention{
			Tool: tool, ToolID: tool, Sentiment: sentiment, Relevance: relevance,
		})
	}

	return a
}

func TestForToolSumsAndClamps(t *testing.T) {
	one := []model.Article{article("a1", cutoff, 1, 1, 10, "cursor")}
	assert.InDelta(t, 1.0, ForTool("cursor", one, cutoff).TotalImpact, 1e-9)

	three := []model.Article{
		article("a1", cutoff, 1, 1, 10, "cursor"),
		article("a2", cutoff, 1, 1, 10, "cursor"),
		article("a3", cutoff, 1, 1, 10, "cursor"),
	}
	impact := ForTool("cursor", three, cutoff)
	assert.Equal(t, MaxTotalImpact, impact.TotalImpact)
	assert.Equal(t, 3, impact.Articles)

	negative := []model.Article{
		article("n1", cutoff, -1, 1, 10, "cursor"),
		article("n2", cutoff, -1, 1, 10, "cursor"),
		article("n3", cutoff, -1, 1, 10, "cursor"),
	}
	assert.Equal(t, -MaxTotalImpact, ForTool("cursor", negative, cutoff).TotalImpact)
}

func TestForToolFilters(t *testing.T) {
	deleted := article("d", cutoff, 1, 1, 10, "cursor")
	deleted.Status = model.ArticleDeleted

	articles := []model.Article{
		article("future", cutoff.Add(time.Hour), 1, 1, 10, "cursor"),
		article("other", cutoff, 1, 1, 10, "aider"),
		deleted,
	}

	impact := ForTool("cursor", articles, cutoff)
	assert.Equal(t, 0.0, impact.TotalImpact)
	assert.Equal(t, 0, impact.Articles)
	assert.Nil(t, impact.LastNewsDate)
}

func TestForToolDecay(t *testing.T) {
	old := article("old", cutoff.AddDate(0, 0, -90), 1, 1, 10, "cursor")
	impact := ForTool("cursor", []model.Article{old}, cutoff)

	assert.InDelta(t, math.Round(math.Exp(-1)*100)/100, impact.TotalImpact, 1e-9)
	require.NotNil(t, impact.LastNewsDate)
	assert.True(t, impact.LastNewsDate.Equal(old.PublishedAt))
}

func TestForToolUsesMostRecentArticles(t *testing.T) {
	var articles []model.Article
	// Twelve small positive articles; the two oldest are a day older and must be ignored.
	for i := 0; i < 12; i++ {
		published := cutoff
		sentiment := 0.1
		if i < 2 {
			published = cutoff.AddDate(0, 0, -1)
			sentiment = -1
		}
		articles = append(articles, article(fmt.Sprintf("a%d", i), published, sentiment, 1, 0, "cursor"))
	}

	impact := ForTool("cursor", articles, cutoff)
	assert.Equal(t, MaxArticles, impact.Articles)
	assert.InDelta(t, 0.5, impact.TotalImpact, 1e-9)
}

func TestForToolQualitative(t *testing.T) {
	a := article("q", cutoff, 0.5, 1, 6, "cursor")
	a.Qualitative = []model.Qualitative{{
		Tool:            "cursor",
		ProductLaunches: []model.ProductLaunch{{Feature: "agent", Significance: "breakthrough", Impact: 8}},
		KeyEvents: []model.KeyEvent{
			{Event: "Series C", Impact: "positive", Significance: 9},
			{Event: "minor patch", Impact: "neutral", Significance: 3},
		},
	}}

	impact := ForTool("cursor", []model.Article{a}, cutoff)
	assert.InDelta(t, 0.4, impact.Adjustments.Innovation, 1e-9)
	require.Len(t, impact.SignificantEvents, 1)
	assert.Equal(t, "Series C", impact.SignificantEvents[0].Event)
}

func TestQualitativeAdjustments(t *testing.T) {
	adj := QualitativeAdjustments(model.Qualitative{
		ProductLaunches:     []model.ProductLaunch{{Significance: "breakthrough", Impact: 8}},
		TechnicalMilestones: []model.TechnicalMilestone{{Category: "performance", Impact: 6}},
		Partnerships:        []model.Partnership{{Partner: "AWS", Significance: 5}},
		Sentiment:           model.SentimentAspects{Overall: 0.5, Product: 0.5, Future: 0.5},
		Development:         model.DevelopmentActivity{ReleaseCadence: "accelerating", FeatureVelocity: 6},
		Positioning:         "leader",
	})

	assert.InDelta(t, 0.7, adj.Innovation, 1e-9)
	assert.InDelta(t, 0.5, adj.Sentiment, 1e-9)
	assert.InDelta(t, 0.9, adj.Velocity, 1e-9)
	assert.InDelta(t, 0.6, adj.Traction, 1e-9)
	assert.InDelta(t, 0.3, adj.Technical, 1e-9)
}

func TestQualitativeDefaults(t *testing.T) {
	adj := QualitativeAdjustments(model.Qualitative{
		ProductLaunches: []model.ProductLaunch{{Significance: "incremental", Impact: 10}},
		Partnerships:    []model.Partnership{{Significance: 10}},
		Development:     model.DevelopmentActivity{FeatureVelocity: 10},
	})

	assert.InDelta(t, 0.15, adj.Innovation, 1e-9)
	assert.InDelta(t, 0.8, adj.Velocity, 1e-9)
	assert.InDelta(t, 0.6, adj.Traction, 1e-9)
}

func TestAdjustmentsCapped(t *testing.T) {
	adj := Adjustments{Innovation: 10, Sentiment: -10, Velocity: 10, Traction: 10, Technical: 10}.capped()

	assert.Equal(t, Adjustments{Innovation: 3, Sentiment: -2, Velocity: 2, Traction: 2, Technical: 1}, adj)
}
