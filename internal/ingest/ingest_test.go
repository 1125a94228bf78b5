package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
	"github.com/SergeyParamoshkin/toolrank/internal/ranking"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
	"github.com/SergeyParamoshkin/toolrank/internal/user"
	"github.com/SergeyParamoshkin/toolrank/internal/version"
)

type fixture struct {
	svc     *Service
	store   *store.Store
	tools   map[string]*model.Tool
	ranking *model.Ranking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{svc: NewService(st, nil, zap.NewNop().Sugar()), store: st, tools: map[string]*model.Tool{}}
	for _, name := range []string{"Cursor", "Windsurf", "Aider"} {
		tool := &model.Tool{Name: name, Category: "ide-assistant"}
		require.NoError(t, st.CreateTool(ctx, tool))
		f.tools[name] = tool
	}

	return f
}

func (f *fixture) publish(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	entry := func(name string, rank int, score float64) model.RankingEntry {
		tool := f.tools[name]

		return model.RankingEntry{ToolID: tool.ID, ToolSlug: tool.Slug, ToolName: name, Rank: rank, Score: score}
	}
	f.ranking = &model.Ranking{Period: "2025-06", AlgorithmVersion: "v7.5", Entries: []model.RankingEntry{
		entry("Cursor", 1, 80),
		entry("Windsurf", 2, 75),
		entry("Aider", 3, 72),
	}}
	require.NoError(t, f.store.SaveRanking(ctx, f.ranking))
	require.NoError(t, f.store.SetCurrent(ctx, f.ranking.ID))
}

func (f *fixture) current(t *testing.T) []model.RankingEntry {
	t.Helper()

	r, err := f.store.CurrentRanking(context.Background())
	require.NoError(t, err)

	return r.Entries
}

func analysis() preview.Analysis {
	return preview.Analysis{
		Title:           "Aider launches architect mode",
		SourceURL:       "https://example.com/aider",
		PublishedAt:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		ImportanceScore: 10,
		Sentiment:       0.8,
		ToolMentions: []model.ToolMention{
			{Tool: "Aider", Context: "Aider launches architect mode", Sentiment: 1, Relevance: 1},
		},
		CompanyMentions: []model.CompanyMention{{Company: "Aider AI"}},
	}
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Preview(ctx, analysis())
	assert.ErrorIs(t, err, ErrNoCurrentRanking)

	_, err = f.svc.Preview(ctx, preview.Analysis{ImportanceScore: 11})
	assert.ErrorIs(t, err, preview.ErrInvalidAnalysis)

	f.publish(t)
	res, err := f.svc.Preview(ctx, analysis())
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	c := res.Changes[0]
	assert.Equal(t, f.tools["Aider"].ID, c.ToolID)
	assert.Equal(t, 3, c.CurrentRank)
	assert.Equal(t, 2, c.PredictedRank)
	assert.Equal(t, 1, c.RankChange)
	assert.InDelta(t, 77, c.PredictedScore, 1e-9)
	assert.Equal(t, []preview.NewCompany{{Name: "Aider AI"}}, res.NewCompanies)
	assert.Empty(t, res.NewTools)

	assert.Equal(t, f.ranking.Entries, f.current(t))

	logs, err := f.svc.Logs(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, model.ActionDryRun, logs[0].Action)
}

func TestWorkflow(t *testing.T) {
	ctx := user.WithUser(context.Background(), &user.User{ID: 1, Name: "editor"})
	f := newFixture(t)
	f.publish(t)

	out, err := f.svc.Ingest(ctx, analysis(), Meta{IngestionType: model.IngestURL, Author: "Jane"})
	require.NoError(t, err)
	art := out.Article
	assert.Equal(t, "editor", art.IngestedBy)
	assert.Equal(t, model.IngestURL, art.IngestionType)
	assert.True(t, art.IsProcessed)
	assert.Equal(t, f.tools["Aider"].ID, art.ToolMentions[0].ToolID)
	assert.Equal(t, "1.0.0", out.Version.Version)
	require.Len(t, out.Changes, 1)
	assert.Equal(t, model.ChangeIncrease, out.Changes[0].ChangeType)

	stored, err := f.store.GetArticle(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ranking.Entries, stored.RankingsSnapshot)

	cur := f.current(t)
	assert.Equal(t, "Aider", cur[1].ToolName)
	assert.InDelta(t, 77, cur[1].Score, 1e-9)

	updated, err := f.svc.Update(ctx, art.ID, TextUpdate{Title: "Aider ships architect mode", Tags: []string{"release"}})
	require.NoError(t, err)
	assert.Equal(t, "Aider ships architect mode", updated.Title)
	assert.Equal(t, "https://example.com/aider", updated.SourceURL)
	assert.Equal(t, cur, f.current(t))

	re, err := f.svc.Recalculate(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", re.Version.Version)
	assert.Equal(t, cur, f.current(t))
	all, err := f.store.ArticleChanges(ctx, art.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	applied, err := f.store.AppliedChanges(ctx, art.ID, "")
	require.NoError(t, err)
	assert.Len(t, applied, 1)

	rb, err := f.svc.Rollback(ctx, art.ID)
	require.NoError(t, err)
	assert.True(t, rb.Version.IsRollback)
	assert.Equal(t, "1.0.2", rb.Version.Version)
	assert.Equal(t, model.ArticleDeleted, rb.Article.Status)
	require.Len(t, rb.Changes, 1)
	assert.True(t, rb.Changes[0].RolledBack)

	cur = f.current(t)
	assert.Equal(t, "Aider", cur[2].ToolName)
	assert.InDelta(t, 72, cur[2].Score, 1e-9)

	_, err = f.svc.Rollback(ctx, art.ID)
	assert.ErrorIs(t, err, ErrAlreadyRolledBack)
	_, err = f.svc.Recalculate(ctx, art.ID)
	assert.ErrorIs(t, err, ErrAlreadyRolledBack)
	_, err = f.svc.Update(ctx, art.ID, TextUpdate{Title: "x"})
	assert.ErrorIs(t, err, ErrAlreadyRolledBack)
	_, err = f.svc.Rollback(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	logs, err := f.svc.Logs(ctx, art.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 7)
	for _, l := range logs {
		assert.Equal(t, "editor", l.PerformedBy)
	}
}

func TestIngestNeedsRanking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ingest(context.Background(), analysis(), Meta{})
	assert.ErrorIs(t, err, ErrNoCurrentRanking)

	list, err := f.store.ListArticles(context.Background(), store.ArticleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func score(t *testing.T, entries []model.RankingEntry, id string) float64 {
	t.Helper()

	e, ok := model.Find(entries, id)
	require.True(t, ok)

	return e.Score
}

func TestRollbackAfterRebuild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publish(t)
	aider := f.tools["Aider"].ID

	out, err := f.svc.Ingest(ctx, analysis(), Meta{})
	require.NoError(t, err)
	assert.InDelta(t, 77, score(t, f.current(t), aider), 1e-9)

	builder := ranking.NewBuilder(f.store, algorithm.New(algorithm.DefaultWeights()), nil, zap.NewNop().Sugar())
	_, err = builder.Build(ctx, ranking.BuildOptions{Period: "2025-06", Publish: true})
	require.NoError(t, err)
	rebuilt := score(t, f.current(t), aider)

	applied, err := f.store.AppliedChanges(ctx, out.Article.ID, "")
	require.NoError(t, err)
	assert.Empty(t, applied)

	_, err = f.svc.Recalculate(ctx, out.Article.ID)
	assert.ErrorIs(t, err, ErrSuperseded)

	rb, err := f.svc.Rollback(ctx, out.Article.ID)
	require.NoError(t, err)
	assert.Empty(t, rb.Changes)
	assert.Equal(t, model.ArticleDeleted, rb.Article.Status)
	assert.InDelta(t, rebuilt, score(t, f.current(t), aider), 1e-9)
}

func TestRollbackAfterVersionRollback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publish(t)
	aider := f.tools["Aider"].ID

	base, err := version.Record(ctx, f.store, version.Params{Period: "2025-06", CreatedBy: "system",
		Entries: f.ranking.Entries})
	require.NoError(t, err)

	out, err := f.svc.Ingest(ctx, analysis(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", out.Version.Version)

	versions := version.NewService(f.store, changes.NewAnalyzer(algorithm.DefaultWeights()), nil, zap.NewNop().Sugar())
	_, err = versions.Rollback(ctx, base.Version, "editor")
	require.NoError(t, err)
	assert.InDelta(t, 72, score(t, f.current(t), aider), 1e-9)

	_, err = f.svc.Recalculate(ctx, out.Article.ID)
	assert.ErrorIs(t, err, ErrSuperseded)

	_, err = f.svc.Rollback(ctx, out.Article.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ranking.Entries, f.current(t))
}

func TestRollbackAcrossPeriods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publish(t)
	aider := f.tools["Aider"].ID

	out, err := f.svc.Ingest(ctx, analysis(), Meta{})
	require.NoError(t, err)

	july := &model.Ranking{Period: "2025-07", AlgorithmVersion: "v7.5", Entries: model.CloneEntries(f.ranking.Entries)}
	require.NoError(t, f.store.SaveRanking(ctx, july))
	require.NoError(t, f.store.SetCurrent(ctx, july.ID))

	_, err = f.svc.Recalculate(ctx, out.Article.ID)
	assert.ErrorIs(t, err, ErrSuperseded)

	rb, err := f.svc.Rollback(ctx, out.Article.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-07", rb.Version.Period)
	require.Len(t, rb.Changes, 1)

	assert.Equal(t, f.ranking.Entries, f.current(t))
	june, err := f.store.GetRanking(ctx, "2025-06")
	require.NoError(t, err)
	assert.InDelta(t, 72, score(t, june.Entries, aider), 1e-9)
	assert.Equal(t, 3, june.Entries[2].Rank)
	assert.Equal(t, aider, june.Entries[2].ToolID)
}
