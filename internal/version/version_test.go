package version

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

func TestNext(t *testing.T) {
	v, err := Next("")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	v, err = Next("1.0.9")
	require.NoError(t, err)
	assert.Equal(t, "1.0.10", v)

	_, err = Next("1.0")
	assert.Error(t, err)
	_, err = Next("1.0.x")
	assert.Error(t, err)
}

func TestCodec(t *testing.T) {
	entries := []model.RankingEntry{
		{ToolID: "a", ToolName: "Cursor", Rank: 1, Score: 81.25, FactorScores: model.Scores{model.Innovation: 70},
			Movement: &model.Movement{PreviousRank: 2, Change: 1, Direction: model.MoveUp}},
		{ToolID: "b", ToolName: "Aider", Rank: 2, Score: 60},
	}
	snap, err := Encode(entries)
	require.NoError(t, err)

	got, err := Decode(snap)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	empty, err := Encode(nil)
	require.NoError(t, err)
	got, err = Decode(empty)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Decode([]byte("not zstd"))
	assert.Error(t, err)
}

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewService(st, changes.NewAnalyzer(algorithm.DefaultWeights()), nil, zap.NewNop().Sugar()), st
}

func entries(scores ...float64) []model.RankingEntry {
	names := []string{"Alpha", "Beta", "Gamma"}
	out := make([]model.RankingEntry, len(scores))
	for i, s := range scores {
		out[i] = model.RankingEntry{ToolID: names[i], ToolName: names[i], Rank: i + 1, Score: s}
	}

	return out
}

func TestServiceHistory(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	r := &model.Ranking{Period: "2025-06", AlgorithmVersion: algorithm.Version, Entries: entries(90, 80, 70)}
	require.NoError(t, st.SaveRanking(ctx, r))
	require.NoError(t, st.SetCurrent(ctx, r.ID))

	v1, err := Record(ctx, st, Params{Period: "2025-06", Summary: "build", CreatedBy: "system", Entries: r.Entries})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v1.Version)
	assert.Empty(t, v1.PreviousID)

	moved := []model.RankingEntry{
		{ToolID: "Gamma", ToolName: "Gamma", Rank: 1, Score: 95},
		{ToolID: "Alpha", ToolName: "Alpha", Rank: 2, Score: 90},
		{ToolID: "Beta", ToolName: "Beta", Rank: 3, Score: 80},
	}
	require.NoError(t, st.UpdateEntries(ctx, r.ID, moved))
	v2, err := Record(ctx, st, Params{Period: "2025-06", ArticleID: "art", CreatedBy: "admin", NewsItems: 1,
		ToolsAffected: 1, Entries: moved})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", v2.Version)
	assert.Equal(t, v1.ID, v2.PreviousID)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1.0.1", list[0].Version)

	got, err := svc.Get(ctx, "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, r.Entries, got.Entries)

	report, err := svc.Diff(ctx, v1.ID, v2.ID)
	require.NoError(t, err)
	assert.Len(t, report.Analyses, 3)

	rb, err := svc.Rollback(ctx, v1.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "1.0.2", rb.Version)
	assert.True(t, rb.IsRollback)
	assert.Equal(t, v1.ID, rb.RolledBackFromID)
	assert.Equal(t, v2.ID, rb.PreviousID)

	cur, err := st.CurrentRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.Entries, cur.Entries)

	_, err = svc.Rollback(ctx, "missing", "admin")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRollbackSupersedesArticleChanges(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	r := &model.Ranking{Period: "2025-06", AlgorithmVersion: algorithm.Version, Entries: entries(90, 80, 70)}
	require.NoError(t, st.SaveRanking(ctx, r))
	require.NoError(t, st.SetCurrent(ctx, r.ID))
	v1, err := Record(ctx, st, Params{Period: "2025-06", CreatedBy: "system", Entries: r.Entries})
	require.NoError(t, err)

	art := &model.Article{Title: "Gamma ships"}
	require.NoError(t, st.CreateArticle(ctx, art))
	require.NoError(t, st.CreateChanges(ctx, []*model.ArticleChange{{ArticleID: art.ID, RankingID: r.ID,
		ToolID: "Gamma", ToolName: "Gamma", ScoreChange: 5, ChangeType: model.ChangeIncrease, IsApplied: true}}))
	require.NoError(t, st.UpdateEntries(ctx, r.ID, entries(90, 80, 75)))

	_, err = svc.Rollback(ctx, v1.Version, "admin")
	require.NoError(t, err)

	applied, err := st.AppliedChanges(ctx, art.ID, "")
	require.NoError(t, err)
	assert.Empty(t, applied)

	all, err := st.ArticleChanges(ctx, art.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].RolledBack)
}

func TestAPI(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	r := &model.Ranking{Period: "2025-06", Entries: entries(90, 80)}
	require.NoError(t, st.SaveRanking(ctx, r))
	v1, err := Record(ctx, st, Params{Period: "2025-06", CreatedBy: "system", Entries: r.Entries})
	require.NoError(t, err)
	_, err = Record(ctx, st, Params{Period: "2025-06", CreatedBy: "system", Entries: entries(70, 85)})
	require.NoError(t, err)

	h := NewAPI(svc).Routes()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.RankingVersion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+v1.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got model.RankingVersion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Entries, 2)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diff?from=1.0.0&to=1.0.1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"from":"1.0.0"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diff", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/"+v1.ID+"/rollback", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"isRollback":true`)
}
