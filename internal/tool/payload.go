package tool

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/ranking"
)

// ToolRequest is the request payload for the Tool data model.
type ToolRequest struct {
	*model.Tool

	ProtectedID string `json:"id"` // override 'id' json to have more control
}

func (t *ToolRequest) Bind(r *http.Request) error {
	// t.Tool is nil if no Tool fields are sent in the request. Return an
	// error to avoid a nil pointer dereference.
	if t.Tool == nil {
		return errors.New("missing required Tool fields")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("missing required name field")
	}
	if t.Category == "" {
		return errors.New("missing required category field")
	}
	switch t.Status {
	case "", model.StatusActive, model.StatusInactive, model.StatusDeprecated:
	default:
		return fmt.Errorf("unknown status %q", t.Status)
	}
	if err := validDelta(t.Delta); err != nil {
		return err
	}

	t.ProtectedID = "" // unset the protected ID

	return nil
}

// DeltaRequest replaces the curator adjustments of a tool.
type DeltaRequest struct {
	Delta model.Scores `json:"deltaScore"`
}

func (d *DeltaRequest) Bind(r *http.Request) error {
	return validDelta(d.Delta)
}

func validDelta(delta model.Scores) error {
	for f, v := range delta {
		if !f.Valid() {
			return fmt.Errorf("unknown factor %q", f)
		}
		if v < -100 || v > 100 {
			return fmt.Errorf("delta for %s out of [-100,100]", f)
		}
	}

	return nil
}

// ToolResponse is the response payload for the Tool data model.
type ToolResponse struct {
	*model.Tool

	Company *model.Company `json:"company,omitempty"`
}

func NewToolResponse(t *model.Tool) *ToolResponse {
	return &ToolResponse{Tool: t}
}

func NewToolListResponse(tools []*model.Tool) []render.Renderer {
	list := []render.Renderer{}
	for _, t := range tools {
		list = append(list, NewToolResponse(t))
	}

	return list
}

func (rd *ToolResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ScoreResponse struct {
	*ranking.ToolScore
}

func (rd *ScoreResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// CompanyRequest is the request payload for the Company data model.
type CompanyRequest struct {
	*model.Company

	ProtectedID string `json:"id"`
}

func (c *CompanyRequest) Bind(r *http.Request) error {
	if c.Company == nil || strings.TrimSpace(c.Name) == "" {
		return errors.New("missing required name field")
	}
	c.ProtectedID = ""

	return nil
}

type CompanyResponse struct {
	*model.Company
}

func (rd *CompanyResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

func NewCompanyListResponse(list []*model.Company) []render.Renderer {
	out := []render.Renderer{}
	for _, c := range list {
		out = append(out, &CompanyResponse{Company: c})
	}

	return out
}
