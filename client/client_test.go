//go:build !integration

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	mux.HandleFunc("/rankings", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Ranking{Period: "2025-06", Entries: []model.RankingEntry{
			{ToolName: "Cursor", Rank: 1, Score: 80},
		}})
	})
	mux.HandleFunc("/admin/news/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, `{"status":"Forbidden."}`, http.StatusForbidden)

			return
		}
		var a preview.Analysis
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
		_ = json.NewEncoder(w).Encode(preview.Result{Changes: []preview.Change{{ToolName: a.ToolMentions[0].Tool, RankChange: 1}}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestClient(t *testing.T) {
	srv := newServer(t)
	c := Client{Addr: srv.URL}
	ctx := context.Background()

	s, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "pong", s)

	r, err := c.CurrentRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06", r.Period)
	require.Len(t, r.Entries, 1)

	_, err = c.Ranking(ctx, "2030-01")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)

	an := preview.Analysis{Title: "x", ToolMentions: []model.ToolMention{{Tool: "Aider"}}}
	_, err = c.PreviewArticle(ctx, an)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)

	c.Token = "secret"
	res, err := c.PreviewArticle(ctx, an)
	require.NoError(t, err)
	assert.Equal(t, "Aider", res.Changes[0].ToolName)
}
