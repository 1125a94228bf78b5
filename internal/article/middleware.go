package article

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

type ctxKey struct{}

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. The parameter is
// tried as an id first, then as a slug. In case the Article could not be
// found, we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "articleID")
		if key == "" {
			errresponse.Respond(w, r, errresponse.ErrNotFound)

			return
		}

		article, err := a.store.GetArticle(r.Context(), key)
		if errors.Is(err, store.ErrNotFound) {
			article, err = a.store.GetArticleBySlug(r.Context(), key)
		}
		if err != nil {
			errresponse.Respond(w, r, errresponse.From(err))

			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PublishedOnly hides rolled back and draft articles from the public API.
func PublishedOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fromContext(r.Context()).Status != model.ArticleActive {
			errresponse.Respond(w, r, errresponse.ErrNotFound)

			return
		}
		next.ServeHTTP(w, r)
	})
}

func fromContext(ctx context.Context) *model.Article {
	// Assume if we've reach this far, we can access the article
	// context because this handler is a child of the ArticleCtx
	// middleware. The worst case, the recoverer middleware will save us.
	// nolint
	return ctx.Value(ctxKey{}).(*model.Article)
}
