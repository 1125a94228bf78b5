package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/config"
)

func newTestApp(t *testing.T, token string) *App {
	t.Helper()

	a, err := NewApp(context.Background(), config.Config{
		Addr:        ":0",
		DiagAddr:    ":0",
		DBPath:      ":memory:",
		AdminName:   "curator",
		AdminToken:  token,
		LogLevel:    "info",
		LogFormat:   "json",
		TrendingTop: 10,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return a
}

type client struct {
	h     http.Handler
	token string
}

func (c client) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	return w
}

func TestRootAndPing(t *testing.T) {
	a := newTestApp(t, "secret")
	c := client{h: a.Router()}

	assert.Equal(t, "root.", c.do(http.MethodGet, "/", "").Body.String())
	assert.Equal(t, "pong", c.do(http.MethodGet, "/ping", "").Body.String())
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/rankings", "").Code)
}

func TestAdminOnly(t *testing.T) {
	a := newTestApp(t, "secret")
	r := a.Router()

	assert.Equal(t, http.StatusForbidden, client{h: r}.do(http.MethodGet, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, client{h: r, token: "wrong"}.do(http.MethodGet, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, client{h: r}.do(http.MethodPost, "/admin/rankings/build", `{}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "secret")
	bare := httptest.NewRecorder()
	r.ServeHTTP(bare, req)
	assert.Equal(t, http.StatusForbidden, bare.Code)

	w := client{h: r, token: "secret"}.do(http.MethodGet, "/admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":100,"name":"curator","role":"admin"}`, w.Body.String())

	locked := newTestApp(t, "")
	assert.Equal(t, http.StatusForbidden, client{h: locked.Router()}.do(http.MethodGet, "/admin", "").Code)
}

func TestRankingFlow(t *testing.T) {
	a := newTestApp(t, "secret")
	r := a.Router()
	public, admin := client{h: r}, client{h: r, token: "secret"}

	w := admin.do(http.MethodPost, "/admin/companies", `{"name":"Anysphere"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = admin.do(http.MethodPost, "/admin/tools",
		`{"name":"Cursor","category":"ide-assistant","info":{"company":"Anysphere","features":["agent"]}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = admin.do(http.MethodPost, "/admin/tools", `{"name":"Aider","category":"cli-agent"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusConflict, admin.do(http.MethodPost, "/admin/news/preview",
		`{"title":"Aider news","toolMentions":[{"tool":"Aider","sentiment":1,"relevance":1}]}`).Code)

	w = admin.do(http.MethodPost, "/admin/rankings/build", `{"period":"2025-06","publish":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"createdBy":"curator"`)

	w = public.do(http.MethodGet, "/rankings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	assert.Equal(t, http.StatusOK, public.do(http.MethodGet, "/rankings/2025-06/changes", "").Code)
	assert.Equal(t, http.StatusOK, public.do(http.MethodGet, "/tools/cursor", "").Code)
	assert.Equal(t, http.StatusOK, public.do(http.MethodGet, "/tools/aider/score", "").Code)
	assert.Equal(t, http.StatusOK, public.do(http.MethodGet, "/companies", "").Code)

	w = admin.do(http.MethodPost, "/admin/news",
		`{"title":"Aider launches architect mode","importanceScore":9,"overallSentiment":0.7,
		  "toolMentions":[{"tool":"Aider","context":"Aider launches architect mode","sentiment":1,"relevance":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = public.do(http.MethodGet, "/news", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Aider launches architect mode")

	w = public.do(http.MethodGet, "/whats-new?days=36500", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"versions"`)

	w = admin.do(http.MethodGet, "/admin/versions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.1"`)

	assert.Equal(t, http.StatusBadRequest, admin.do(http.MethodPost, "/admin/rankings/build", `{"period":"June"}`).Code)
}

func TestDiagRouter(t *testing.T) {
	a := newTestApp(t, "secret")
	c := client{h: a.Router()}
	c.do(http.MethodGet, "/ping", "")

	diag := client{h: a.DiagRouter()}
	w := diag.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "completed_count")

	w = diag.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
