package ranking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

var clock = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	builder *Builder
	store   *store.Store
	cursor  *model.Tool
	zed     *model.Tool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{store: st}
	f.builder = NewBuilder(st, algorithm.New(algorithm.DefaultWeights()), nil, zap.NewNop().Sugar())
	f.builder.SetClock(func() time.Time { return clock })

	f.cursor = &model.Tool{Name: "Cursor", Category: "ide-assistant", Info: model.ToolInfo{
		Description: strings.Repeat("AI-first code editor with autonomous agent mode. ", 4),
		LaunchYear:  2023,
		Features:    []string{"agent", "tab", "chat", "composer", "rules", "background agents"},
		Technical: model.Technical{
			ContextWindow:    200000,
			MultiFileSupport: true,
			LLMProviders:     []string{"openai", "anthropic", "google"},
			IDEIntegration:   "vscode fork",
		},
		Business: model.Business{PricingModel: "subscription", BasePrice: 20, FreeTier: true},
		Metrics: model.Metrics{
			SWEBench:       model.SWEBench{Verified: 60},
			Users:          1_000_000,
			MonthlyARR:     500_000_000,
			Valuation:      9_900_000_000,
			GitHubStars:    30_000,
			VSCodeInstalls: 2_000_000,
		},
	}}
	f.zed = &model.Tool{Name: "Zed", Category: "code-editor", Info: model.ToolInfo{Description: "editor"}}
	for _, tool := range []*model.Tool{f.cursor, f.zed,
		{Name: "Retired", Category: "other", Status: model.StatusInactive}} {
		require.NoError(t, st.CreateTool(ctx, tool))
	}

	require.NoError(t, st.CreateArticle(ctx, &model.Article{
		Title:           "Zed ships agentic editing",
		PublishedAt:     time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		ImportanceScore: 8,
		Sentiment:       0.9,
		ToolMentions:    []model.ToolMention{{Tool: "Zed", ToolID: f.zed.ID, Sentiment: 0.9, Relevance: 1}},
	}))

	return f
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.builder.Build(ctx, BuildOptions{Period: "June"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	may, err := f.builder.Build(ctx, BuildOptions{Period: "2025-05", Publish: true})
	require.NoError(t, err)
	require.Len(t, may.Ranking.Entries, 2)
	assert.Equal(t, "Cursor", may.Ranking.Entries[0].ToolName)
	assert.Equal(t, model.MoveNew, may.Ranking.Entries[0].Movement.Direction)
	assert.Zero(t, may.Ranking.Entries[1].NewsImpact)
	assert.True(t, may.Ranking.IsCurrent)
	require.NotNil(t, may.Version)
	assert.Equal(t, "1.0.0", may.Version.Version)

	june, err := f.builder.Build(ctx, BuildOptions{Period: "2025-06", Publish: true})
	require.NoError(t, err)
	zed, ok := model.Find(june.Ranking.Entries, f.zed.ID)
	require.True(t, ok)
	assert.Greater(t, zed.NewsImpact, 0.0)
	assert.Equal(t, &model.Movement{PreviousRank: 2, Change: 0, Direction: model.MoveStable}, zed.Movement)
	assert.Equal(t, "1.0.1", june.Version.Version)

	draft, err := f.builder.Build(ctx, BuildOptions{Period: "2025-07"})
	require.NoError(t, err)
	assert.False(t, draft.Ranking.IsCurrent)
	assert.Nil(t, draft.Version)

	cur, err := f.builder.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06", cur.Period)

	periods, err := f.builder.Periods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-07", "2025-06", "2025-05"}, periods)

	report, err := f.builder.Changes(ctx, "2025-06")
	require.NoError(t, err)
	assert.Len(t, report.Analyses, 2)

	first, err := f.builder.Changes(ctx, "2025-05")
	require.NoError(t, err)
	assert.Equal(t, "new_entry", first.Analyses[0].Category)

	tr, err := f.builder.Trending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, tr.Periods, 3)
	assert.Len(t, tr.Tools, 2)

	feed, err := f.builder.WhatsNew(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, feed.Articles, 1)
	assert.Len(t, feed.Versions, 2)
	assert.Empty(t, feed.Movers)
}

func TestBuildKeepsLiveRanking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	june, err := f.builder.Build(ctx, BuildOptions{Period: "2025-06", Publish: true})
	require.NoError(t, err)

	live := model.CloneEntries(june.Ranking.Entries)
	live[0].Score += 5
	require.NoError(t, f.store.UpdateEntries(ctx, june.Ranking.ID, live))

	art := &model.Article{Title: "Cursor raises", PublishedAt: time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.store.CreateArticle(ctx, art))
	require.NoError(t, f.store.CreateChanges(ctx, []*model.ArticleChange{{ArticleID: art.ID, RankingID: june.Ranking.ID,
		ToolID: live[0].ToolID, ToolName: live[0].ToolName, ScoreChange: 5, ChangeType: model.ChangeIncrease,
		IsApplied: true}}))

	_, err = f.builder.Build(ctx, BuildOptions{Period: "2025-06"})
	assert.ErrorIs(t, err, ErrCurrentDraft)

	cur, err := f.builder.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, live, cur.Entries)

	may, err := f.builder.Build(ctx, BuildOptions{Period: "2025-05"})
	require.NoError(t, err)
	assert.False(t, may.Ranking.IsCurrent)

	applied, err := f.store.AppliedChanges(ctx, art.ID, "")
	require.NoError(t, err)
	require.Len(t, applied, 1)

	rebuilt, err := f.builder.Build(ctx, BuildOptions{Period: "2025-06", Publish: true})
	require.NoError(t, err)
	assert.Equal(t, june.Ranking.ID, rebuilt.Ranking.ID)

	applied, err = f.store.AppliedChanges(ctx, art.ID, "")
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestBuildCutoff(t *testing.T) {
	f := newFixture(t)

	end, err := f.builder.cutoff(BuildOptions{Period: "2025-05"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 31, 23, 59, 59, 999999999, time.UTC), end)

	running, err := f.builder.cutoff(BuildOptions{Period: "2025-07"})
	require.NoError(t, err)
	assert.Equal(t, clock, running)

	explicit := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	got, err := f.builder.cutoff(BuildOptions{Period: "2025-05", Cutoff: explicit})
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestScoreTool(t *testing.T) {
	f := newFixture(t)

	s, err := f.builder.ScoreTool(context.Background(), f.zed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zed", s.ToolName)
	assert.Equal(t, 1, s.Impact.Articles)
	assert.Greater(t, s.NewsImpact, 0.0)

	_, err = f.builder.ScoreTool(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAPI(t *testing.T) {
	errresponse.Register(http.StatusNotFound, store.ErrNotFound)
	errresponse.Register(http.StatusBadRequest, ErrInvalidPeriod)
	errresponse.Register(http.StatusConflict, ErrCurrentDraft)

	f := newFixture(t)
	api := NewAPI(f.builder, 0)
	public, admin := api.Routes(), api.AdminRoutes()

	do := func(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		return w
	}

	assert.Equal(t, http.StatusNotFound, do(public, http.MethodGet, "/", "").Code)

	w := do(admin, http.MethodPost, "/build", `{"period":"2025-06","publish":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)

	assert.Equal(t, http.StatusConflict, do(admin, http.MethodPost, "/build", `{"period":"2025-06"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPost, "/build", `{"period":"2025-6"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPost, "/build", `{}`).Code)

	w = do(public, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	assert.Equal(t, http.StatusOK, do(public, http.MethodGet, "/2025-06", "").Code)
	assert.Equal(t, http.StatusNotFound, do(public, http.MethodGet, "/2030-01", "").Code)

	w = do(public, http.MethodGet, "/2025-06/changes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"period":"2025-06"`)

	w = do(public, http.MethodGet, "/periods", "")
	assert.JSONEq(t, `{"periods":["2025-06"]}`, w.Body.String())

	w = do(public, http.MethodGet, "/algorithm", "")
	assert.Contains(t, w.Body.String(), `"version":"v7.5"`)

	w = do(public, http.MethodGet, "/trending?top=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"topToolsCount":1`)
}
