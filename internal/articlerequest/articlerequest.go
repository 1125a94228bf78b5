// Package articlerequest holds the request payloads of the news endpoints.
package articlerequest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/toolrank/internal/ingest"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
)

// ArticleRequest is the request payload for previewing or ingesting an
// analysed article.
type ArticleRequest struct {
	*preview.Analysis

	IngestionType string `json:"ingestionType,omitempty"`
	Author        string `json:"author,omitempty"`

	ProtectedID string `json:"id"` // override 'id' json to have more control
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	// a.Analysis is nil if no analysis fields are sent in the request. Return an
	// error to avoid a nil pointer dereference.
	if a.Analysis == nil {
		return errors.New("missing required article fields")
	}

	switch a.IngestionType {
	case "":
		a.IngestionType = model.IngestText
	case model.IngestURL, model.IngestText, model.IngestFile:
	default:
		return fmt.Errorf("unknown ingestion type %q", a.IngestionType)
	}

	a.ProtectedID = ""
	a.Title = strings.TrimSpace(a.Title)

	return a.Validate()
}

func (a *ArticleRequest) Meta() ingest.Meta {
	return ingest.Meta{IngestionType: a.IngestionType, Author: a.Author}
}

// UpdateRequest edits the text of a stored article. Scores are untouched.
type UpdateRequest struct {
	Title      string   `json:"title,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Content    string   `json:"content,omitempty"`
	SourceName string   `json:"sourceName,omitempty"`
	SourceURL  string   `json:"sourceUrl,omitempty"`
	Category   string   `json:"category,omitempty"`
	Author     string   `json:"author,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	// Analysis fields are rejected; scoring edits go through recalculation.
	ToolMentions []model.ToolMention `json:"toolMentions,omitempty"`
}

func (u *UpdateRequest) Bind(r *http.Request) error {
	if u.ToolMentions != nil {
		return errors.New("tool mentions cannot be edited, ingest a new article instead")
	}
	if u.Title == "" && u.Summary == "" && u.Content == "" && u.SourceName == "" &&
		u.SourceURL == "" && u.Category == "" && u.Author == "" && u.Tags == nil {
		return errors.New("nothing to update")
	}

	return nil
}

func (u *UpdateRequest) TextUpdate() ingest.TextUpdate {
	return ingest.TextUpdate{
		Title:      u.Title,
		Summary:    u.Summary,
		Content:    u.Content,
		SourceName: u.SourceName,
		SourceURL:  u.SourceURL,
		Category:   u.Category,
		Author:     u.Author,
		Tags:       u.Tags,
	}
}
