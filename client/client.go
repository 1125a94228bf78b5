// Package client is a small Go client for the toolrank HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
)

type Client struct {
	http.Client
	Addr string
	// Token authenticates the admin calls.
	Token string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("toolrank: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}
	if out == nil {
		return nil
	}

	return json.Unmarshal(raw, out)
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// CurrentRanking fetches the live ranking.
func (c *Client) CurrentRanking(ctx context.Context) (*model.Ranking, error) {
	var r model.Ranking
	if err := c.do(ctx, http.MethodGet, "/rankings", nil, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// Ranking fetches the ranking of a YYYY-MM period.
func (c *Client) Ranking(ctx context.Context, period string) (*model.Ranking, error) {
	var r model.Ranking
	if err := c.do(ctx, http.MethodGet, "/rankings/"+period, nil, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// PreviewArticle asks how an analysed article would move the ranking. Needs Token.
func (c *Client) PreviewArticle(ctx context.Context, a preview.Analysis) (*preview.Result, error) {
	var res preview.Result
	if err := c.do(ctx, http.MethodPost, "/admin/news/preview", a, &res); err != nil {
		return nil, err
	}

	return &res, nil
}
