// Package article serves the news feed and the admin article workflows.
package article

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/toolrank/internal/articlerequest"
	"github.com/SergeyParamoshkin/toolrank/internal/articleresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/ingest"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/paginate"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

type API struct {
	store *store.Store
	svc   *ingest.Service
}

func NewAPI(st *store.Store, svc *ingest.Service) *API {
	return &API{store: st, svc: svc}
}

// Routes mounts under /news.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(paginate.Middleware).Get("/", a.ListArticles)
	r.Route("/{articleID}", func(r chi.Router) {
		r.Use(a.ArticleCtx, PublishedOnly)
		r.Get("/", a.GetArticle)
		r.Get("/changes", a.ArticleChanges)
	})

	return r
}

// AdminRoutes mounts under /admin/news.
func (a *API) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.With(paginate.Middleware).Get("/", a.ListAllArticles)
	r.Post("/", a.IngestArticle)
	r.Post("/preview", a.PreviewArticle)
	r.With(paginate.Middleware).Get("/logs", a.Logs)
	r.Route("/{articleID}", func(r chi.Router) {
		r.Use(a.ArticleCtx)
		r.Get("/", a.GetArticle)
		r.Put("/", a.UpdateArticle)
		r.Delete("/", a.RollbackArticle)
		r.Post("/recalculate", a.RecalculateArticle)
		r.Get("/changes", a.ArticleChanges)
		r.With(paginate.Middleware).Get("/logs", a.Logs)
	})

	return r
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, rd render.Renderer) {
	if err := render.Render(w, r, rd); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) list(w http.ResponseWriter, r *http.Request, status string) {
	page := paginate.FromContext(r.Context())

	articles, err := a.store.ListArticles(r.Context(), store.ArticleFilter{
		Status: status,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	if err := render.RenderList(w, r, articleresponse.NewArticleListResponse(articles)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

// ListArticles returns the active articles, newest first.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	a.list(w, r, model.ArticleActive)
}

// ListAllArticles accepts ?status= and returns every status by default.
func (a *API) ListAllArticles(w http.ResponseWriter, r *http.Request) {
	a.list(w, r, r.URL.Query().Get("status"))
}

// GetArticle returns the Article loaded by ArticleCtx.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, articleresponse.NewArticleResponse(fromContext(r.Context())))
}

// ArticleChanges lists every ranking change the article caused, rolled back ones included.
func (a *API) ArticleChanges(w http.ResponseWriter, r *http.Request) {
	list, err := a.store.ArticleChanges(r.Context(), fromContext(r.Context()).ID)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &articleresponse.ChangesResponse{Changes: list})
}

// PreviewArticle predicts the ranking changes without saving anything.
func (a *API) PreviewArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	res, err := a.svc.Preview(r.Context(), *data.Analysis)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &articleresponse.PreviewResponse{Result: res})
}

// IngestArticle persists the posted analysis and applies it to the current ranking.
func (a *API) IngestArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	out, err := a.svc.Ingest(r.Context(), *data.Analysis, data.Meta())
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	render.Status(r, http.StatusCreated)
	a.respond(w, r, articleresponse.NewOutcomeResponse(out))
}

// UpdateArticle edits the article text in our persistent store.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.UpdateRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	article, err := a.svc.Update(r.Context(), fromContext(r.Context()).ID, data.TextUpdate())
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, articleresponse.NewArticleResponse(article))
}

func (a *API) RecalculateArticle(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Recalculate(r.Context(), fromContext(r.Context()).ID)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, articleresponse.NewOutcomeResponse(out))
}

// RollbackArticle reverts the article's ranking changes and marks it deleted.
func (a *API) RollbackArticle(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Rollback(r.Context(), fromContext(r.Context()).ID)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, articleresponse.NewOutcomeResponse(out))
}

// Logs is paginated; under /{articleID} it is scoped to that article.
func (a *API) Logs(w http.ResponseWriter, r *http.Request) {
	var articleID string
	if art, ok := r.Context().Value(ctxKey{}).(*model.Article); ok {
		articleID = art.ID
	}
	page := paginate.FromContext(r.Context())

	logs, err := a.svc.Logs(r.Context(), articleID, page.Limit, page.Offset)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &articleresponse.LogsResponse{Logs: logs})
}
