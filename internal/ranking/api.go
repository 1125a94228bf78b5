package ranking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/trending"
)

type ctxKey struct{}

// Response is the payload for a ranking.
type Response struct {
	*model.Ranking
	Total int `json:"total"`
}

func NewResponse(r *model.Ranking) *Response {
	return &Response{Ranking: r}
}

func (rd *Response) Render(w http.ResponseWriter, r *http.Request) error {
	rd.Total = len(rd.Entries)

	return nil
}

type PeriodsResponse struct {
	Periods []string `json:"periods"`
}

func (rd *PeriodsResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type AlgorithmResponse struct {
	algorithm.Info
}

func (rd *AlgorithmResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type ChangesResponse struct {
	Period string `json:"period"`
	changes.Report
}

func (rd *ChangesResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type TrendingResponse struct {
	trending.Result
}

func (rd *TrendingResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type WhatsNewResponse struct {
	*WhatsNew
}

func (rd *WhatsNewResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

type BuildResponse struct {
	*BuildResult
}

func (rd *BuildResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// BuildRequest is the request payload for POST /admin/rankings/build.
type BuildRequest struct {
	Period  string     `json:"period"`
	Cutoff  *time.Time `json:"cutoffDate,omitempty"`
	Publish bool       `json:"publish"`
}

func (b *BuildRequest) Bind(r *http.Request) error {
	if b.Period == "" {
		return errors.New("missing required period field")
	}
	if _, err := time.Parse(periodLayout, b.Period); err != nil {
		return ErrInvalidPeriod
	}

	return nil
}

type API struct {
	builder *Builder
	topN    int
}

func NewAPI(b *Builder, topN int) *API {
	if topN <= 0 {
		topN = trending.DefaultTopN
	}

	return &API{builder: b, topN: topN}
}

// Routes mounts under /rankings.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.Current)
	r.Get("/algorithm", a.Algorithm)
	r.Get("/periods", a.Periods)
	r.Get("/trending", a.Trending)
	r.Route("/{period:\\d{4}-\\d{2}}", func(r chi.Router) {
		r.Use(a.RankingCtx)
		r.Get("/", a.Get)
		r.Get("/changes", a.Changes)
	})

	return r
}

// AdminRoutes mounts under /admin/rankings.
func (a *API) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/build", a.Build)

	return r
}

// RankingCtx loads the ranking of the period in the URL.
func (a *API) RankingCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rk, err := a.builder.ByPeriod(r.Context(), chi.URLParam(r, "period"))
		if err != nil {
			errresponse.Respond(w, r, errresponse.From(err))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, rk)))
	})
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, rd render.Renderer) {
	if err := render.Render(w, r, rd); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) Current(w http.ResponseWriter, r *http.Request) {
	rk, err := a.builder.Current(r.Context())
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, NewResponse(rk))
}

func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	// nolint
	rk := r.Context().Value(ctxKey{}).(*model.Ranking)

	a.respond(w, r, NewResponse(rk))
}

func (a *API) Algorithm(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, &AlgorithmResponse{Info: a.builder.Engine().Info()})
}

func (a *API) Periods(w http.ResponseWriter, r *http.Request) {
	periods, err := a.builder.Periods(r.Context())
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &PeriodsResponse{Periods: periods})
}

func (a *API) Changes(w http.ResponseWriter, r *http.Request) {
	// nolint
	rk := r.Context().Value(ctxKey{}).(*model.Ranking)

	report, err := a.builder.Changes(r.Context(), rk.Period)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &ChangesResponse{Period: rk.Period, Report: report})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && n > 0 {
		return n
	}

	return fallback
}

// Trending accepts ?top=N.
func (a *API) Trending(w http.ResponseWriter, r *http.Request) {
	res, err := a.builder.Trending(r.Context(), queryInt(r, "top", a.topN))
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &TrendingResponse{Result: res})
}

// WhatsNew accepts ?days=N.
func (a *API) WhatsNew(w http.ResponseWriter, r *http.Request) {
	feed, err := a.builder.WhatsNew(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &WhatsNewResponse{WhatsNew: feed})
}

func (a *API) Build(w http.ResponseWriter, r *http.Request) {
	data := &BuildRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	opts := BuildOptions{Period: data.Period, Publish: data.Publish}
	if data.Cutoff != nil {
		opts.Cutoff = *data.Cutoff
	}
	res, err := a.builder.Build(r.Context(), opts)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	render.Status(r, http.StatusCreated)
	a.respond(w, r, &BuildResponse{BuildResult: res})
}
