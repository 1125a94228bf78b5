package article

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/articleresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/ingest"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

const aiderNews = `{
	"title": "Aider launches architect mode",
	"url": "https://example.com/aider",
	"publishedDate": "2025-06-10T00:00:00Z",
	"importanceScore": 10,
	"overallSentiment": 0.8,
	"toolMentions": [{"tool": "Aider", "context": "Aider launches architect mode", "sentiment": 1, "relevance": 1}]
}`

func newAPI(t *testing.T) *API {
	t.Helper()
	errresponse.Register(http.StatusNotFound, store.ErrNotFound)
	errresponse.Register(http.StatusConflict, ingest.ErrNoCurrentRanking, ingest.ErrAlreadyRolledBack)
	errresponse.Register(http.StatusBadRequest, preview.ErrInvalidAnalysis)

	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var entries []model.RankingEntry
	for i, name := range []string{"Cursor", "Windsurf", "Aider"} {
		tool := &model.Tool{Name: name, Category: "ide-assistant"}
		require.NoError(t, st.CreateTool(ctx, tool))
		entries = append(entries, model.RankingEntry{
			ToolID: tool.ID, ToolSlug: tool.Slug, ToolName: name, Rank: i + 1, Score: 80 - float64(i*4),
		})
	}
	r := &model.Ranking{Period: "2025-06", AlgorithmVersion: "v7.5", Entries: entries}
	require.NoError(t, st.SaveRanking(ctx, r))
	require.NoError(t, st.SetCurrent(ctx, r.ID))

	return NewAPI(st, ingest.NewService(st, nil, zap.NewNop().Sugar()))
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func TestPreviewArticle(t *testing.T) {
	admin := newAPI(t).AdminRoutes()

	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPost, "/preview", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPost, "/preview", `{"title":"x","importanceScore":12}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(admin, http.MethodPost, "/preview", `{"title":"x","ingestionType":"fax"}`).Code)

	w := do(admin, http.MethodPost, "/preview", aiderNews)
	require.Equal(t, http.StatusOK, w.Code)

	var res preview.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "Aider", res.Changes[0].ToolName)
	assert.Equal(t, 1, res.Changes[0].RankChange)

	list := do(admin, http.MethodGet, "/", "")
	assert.JSONEq(t, `[]`, list.Body.String())
}

func TestArticleLifecycle(t *testing.T) {
	api := newAPI(t)
	public, admin := api.Routes(), api.AdminRoutes()

	w := do(admin, http.MethodPost, "/", aiderNews)
	require.Equal(t, http.StatusCreated, w.Code)
	var out articleresponse.OutcomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	id := out.Article.ID
	assert.Equal(t, model.IngestText, out.Article.IngestionType)
	assert.Equal(t, 1, out.Article.ToolsMentioned)
	assert.Equal(t, "1.0.0", out.Version.Version)
	require.Len(t, out.Changes, 1)

	w = do(public, http.MethodGet, "/", "")
	var list []articleresponse.ArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, do(public, http.MethodGet, "/"+list[0].Slug, "").Code)
	w = do(public, http.MethodGet, "/"+id+"/changes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changeType":"increase"`)

	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPut, "/"+id, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPut, "/"+id, `{"toolMentions":[]}`).Code)
	w = do(admin, http.MethodPut, "/"+id, `{"title":"Aider ships architect mode"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Aider ships architect mode"`)

	w = do(admin, http.MethodPost, "/"+id+"/recalculate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.1"`)

	w = do(admin, http.MethodDelete, "/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isRollback":true`)

	assert.Equal(t, http.StatusNotFound, do(public, http.MethodGet, "/"+id, "").Code)
	w = do(admin, http.MethodGet, "/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"deleted"`)
	assert.Equal(t, http.StatusConflict, do(admin, http.MethodDelete, "/"+id, "").Code)

	w = do(admin, http.MethodGet, "/"+id+"/logs?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs articleresponse.LogsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs.Logs, 2)

	w = do(admin, http.MethodGet, "/"+id+"/logs?limit=100000&offset=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs.Logs, 4)

	assert.Equal(t, http.StatusNotFound, do(admin, http.MethodGet, "/missing", "").Code)
}
