//go:build integration

package client

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var c = Client{
	Addr:   "http://localhost:3333",
	Client: http.Client{},
	Token:  os.Getenv("TOOLRANK_ADMIN_TOKEN"),
}

func TestPing(t *testing.T) {
	s, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "pong", s)
}

func TestCurrentRanking(t *testing.T) {
	r, err := c.CurrentRanking(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, r.Period)
}
