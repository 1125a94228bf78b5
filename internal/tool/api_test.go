package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/ranking"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

type scorerFunc func(ctx context.Context, id string) (*ranking.ToolScore, error)

func (f scorerFunc) ScoreTool(ctx context.Context, id string) (*ranking.ToolScore, error) {
	return f(ctx, id)
}

func newAPI(t *testing.T) (*API, *store.Store) {
	t.Helper()
	errresponse.Register(http.StatusNotFound, store.ErrNotFound)
	errresponse.Register(http.StatusConflict, store.ErrDuplicate)

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	scorer := scorerFunc(func(_ context.Context, id string) (*ranking.ToolScore, error) {
		return &ranking.ToolScore{ToolScore: algorithm.ToolScore{ToolID: id, Overall: 42}}, nil
	})

	return NewAPI(st, scorer), st
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func TestCatalogue(t *testing.T) {
	api, st := newAPI(t)
	public, admin := api.Routes(), api.AdminRoutes()
	companies, adminCompanies := api.CompanyRoutes(), api.AdminCompanyRoutes()

	w := do(adminCompanies, http.MethodPost, "/", `{"id":"ignored","name":"Anysphere"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var company model.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &company))
	assert.NotEqual(t, "ignored", company.ID)
	assert.Equal(t, "anysphere", company.Slug)

	assert.Equal(t, http.StatusOK, do(companies, http.MethodGet, "/anysphere", "").Code)
	assert.Equal(t, http.StatusNotFound, do(companies, http.MethodGet, "/nope", "").Code)

	w = do(admin, http.MethodPost, "/", `{"name":"Cursor","category":"ide-assistant","info":{"company":"Anysphere"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "cursor", created.Slug)
	assert.Equal(t, company.ID, created.CompanyID)
	require.NotNil(t, created.Company)
	assert.Equal(t, "Anysphere", created.Company.Name)

	assert.Equal(t, http.StatusConflict,
		do(admin, http.MethodPost, "/", `{"name":"Cursor","category":"ide-assistant"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPost, "/", `{"name":"Zed"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(admin, http.MethodPost, "/", `{"name":"Zed","category":"code-editor","status":"gone"}`).Code)

	require.NoError(t, st.CreateTool(context.Background(),
		&model.Tool{Name: "Old", Category: "other", Status: model.StatusDeprecated}))

	w = do(public, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Tool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(public, http.MethodGet, "/?status=all&limit=1&offset=1", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Old", list[0].Name)

	assert.Equal(t, http.StatusOK, do(public, http.MethodGet, "/cursor", "").Code)
	assert.Equal(t, http.StatusOK, do(public, http.MethodGet, "/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(public, http.MethodGet, "/missing", "").Code)

	w = do(public, http.MethodGet, "/cursor/score", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"overallScore":42`)

	w = do(admin, http.MethodPut, "/cursor", `{"name":"Cursor","category":"code-editor"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got, err := st.GetTool(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "code-editor", got.Category)
	assert.Equal(t, "cursor", got.Slug)

	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPut, "/cursor/delta", `{"deltaScore":{"charm":5}}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPut, "/cursor/delta", `{"deltaScore":{"innovation":500}}`).Code)
	require.Equal(t, http.StatusOK, do(admin, http.MethodPut, "/cursor/delta", `{"deltaScore":{"innovation":5,"overall":-2}}`).Code)
	got, err = st.GetTool(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Scores{model.Innovation: 5, model.Overall: -2}, got.Delta)

	assert.Equal(t, http.StatusOK, do(admin, http.MethodDelete, "/cursor", "").Code)
	assert.Equal(t, http.StatusNotFound, do(public, http.MethodGet, "/cursor", "").Code)
}
