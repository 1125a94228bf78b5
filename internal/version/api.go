package version

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/paginate"
	"github.com/SergeyParamoshkin/toolrank/internal/user"
)

type ctxKey struct{}

// Response is the payload for one ranking version.
type Response struct {
	*model.RankingVersion
}

func (rd *Response) Render(w http.ResponseWriter, r *http.Request) error { return nil }

func NewListResponse(list []model.RankingVersion) []render.Renderer {
	out := []render.Renderer{}
	for i := range list {
		out = append(out, &Response{RankingVersion: &list[i]})
	}

	return out
}

type DiffResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	changes.Report
}

func (rd *DiffResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type API struct {
	svc *Service
}

func NewAPI(svc *Service) *API { return &API{svc: svc} }

// Routes mounts under /admin/versions.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(paginate.Middleware).Get("/", a.List)
	r.Get("/diff", a.Diff)
	r.Route("/{versionID}", func(r chi.Router) {
		r.Use(a.VersionCtx)
		r.Get("/", a.Get)
		r.Post("/rollback", a.Rollback)
	})

	return r
}

// VersionCtx loads the version named in the URL, snapshot included.
func (a *API) VersionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := a.svc.Get(r.Context(), chi.URLParam(r, "versionID"))
		if err != nil {
			errresponse.Respond(w, r, errresponse.From(err))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, v)))
	})
}

func (a *API) List(w http.ResponseWriter, r *http.Request) {
	page := paginate.FromContext(r.Context())
	list, err := a.svc.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	if err := render.RenderList(w, r, NewListResponse(list)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	// nolint
	v := r.Context().Value(ctxKey{}).(*model.RankingVersion)

	if err := render.Render(w, r, &Response{RankingVersion: v}); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

// Diff compares ?from= and ?to= versions.
func (a *API) Diff(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(errors.New("from and to are required")))

		return
	}

	report, err := a.svc.Diff(r.Context(), from, to)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	if err := render.Render(w, r, &DiffResponse{From: from, To: to, Report: report}); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) Rollback(w http.ResponseWriter, r *http.Request) {
	// nolint
	v := r.Context().Value(ctxKey{}).(*model.RankingVersion)

	created, err := a.svc.Rollback(r.Context(), v.ID, user.Name(r.Context()))
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, &Response{RankingVersion: created}); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}
