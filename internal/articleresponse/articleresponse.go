package articleresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/toolrank/internal/ingest"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
)

// ArticleResponse is the response payload for the Article data model.
//
// In the ArticleResponse object, first a Render() is called on itself,
// then the next field, and so on, all the way down the tree.
type ArticleResponse struct {
	*model.Article

	// Computed on render: the number of tools the article mentions.
	ToolsMentioned int `json:"toolsMentioned"`
}

func NewArticleListResponse(articles []*model.Article) []render.Renderer {
	list := []render.Renderer{}
	for _, article := range articles {
		list = append(list, NewArticleResponse(article))
	}

	return list
}

func NewArticleResponse(article *model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	rd.ToolsMentioned = len(rd.ToolMentions)

	return nil
}

// OutcomeResponse reports a persisted article workflow.
type OutcomeResponse struct {
	Article *ArticleResponse       `json:"article"`
	Preview *preview.Result        `json:"preview,omitempty"`
	Version *model.RankingVersion  `json:"version,omitempty"`
	Changes []*model.ArticleChange `json:"changes"`
}

func NewOutcomeResponse(o *ingest.Outcome) *OutcomeResponse {
	resp := &OutcomeResponse{
		Article: NewArticleResponse(o.Article),
		Preview: o.Preview,
		Version: o.Version,
		Changes: o.Changes,
	}
	if resp.Changes == nil {
		resp.Changes = []*model.ArticleChange{}
	}

	return resp
}

// Render has nothing to do; render walks into Article on its own.
func (rd *OutcomeResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type PreviewResponse struct {
	*preview.Result
}

func (rd *PreviewResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type ChangesResponse struct {
	Changes []*model.ArticleChange `json:"changes"`
}

func (rd *ChangesResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type LogsResponse struct {
	Logs []*model.ProcessingLog `json:"logs"`
}

func (rd *LogsResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }
