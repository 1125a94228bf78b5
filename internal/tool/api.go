// Package tool serves the tool and company catalogue.
package tool

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/logging"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/paginate"
	"github.com/SergeyParamoshkin/toolrank/internal/ranking"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

type ctxKey struct{}

// Scorer computes the live score breakdown of a tool.
type Scorer interface {
	ScoreTool(ctx context.Context, id string) (*ranking.ToolScore, error)
}

type API struct {
	store  *store.Store
	scorer Scorer
}

func NewAPI(st *store.Store, scorer Scorer) *API {
	return &API{store: st, scorer: scorer}
}

// Routes mounts under /tools.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(paginate.Middleware).Get("/", a.List)
	r.Route("/{toolID}", func(r chi.Router) {
		r.Use(a.ToolCtx) // Load the *model.Tool on the request context
		r.Get("/", a.Get)
		r.Get("/score", a.Score)
	})

	return r
}

// AdminRoutes mounts under /admin/tools.
func (a *API) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", a.Create)
	r.Route("/{toolID}", func(r chi.Router) {
		r.Use(a.ToolCtx)
		r.Put("/", a.Update)
		r.Delete("/", a.Delete)
		r.Put("/delta", a.SetDelta)
	})

	return r
}

// CompanyRoutes mounts under /companies.
func (a *API) CompanyRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.ListCompanies)
	r.Get("/{companyID}", a.GetCompany)

	return r
}

// AdminCompanyRoutes mounts under /admin/companies.
func (a *API) AdminCompanyRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", a.CreateCompany)

	return r
}

// ToolCtx middleware loads a Tool by id or slug from the URL parameters.
// In case the Tool could not be found, we stop here and return a 404.
func (a *API) ToolCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "toolID")

		t, err := a.store.GetTool(r.Context(), key)
		if errors.Is(err, store.ErrNotFound) {
			t, err = a.store.GetToolBySlug(r.Context(), key)
		}
		if err != nil {
			errresponse.Respond(w, r, errresponse.From(err))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, t)))
	})
}

func toolFrom(r *http.Request) *model.Tool {
	// nolint
	return r.Context().Value(ctxKey{}).(*model.Tool)
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, rd render.Renderer) {
	if err := render.Render(w, r, rd); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

// withCompany attaches the owning company, if any, to the response.
func (a *API) withCompany(ctx context.Context, t *model.Tool) *ToolResponse {
	resp := NewToolResponse(t)
	if t.CompanyID == "" {
		return resp
	}

	c, err := a.store.GetCompany(ctx, t.CompanyID)
	if err != nil {
		logging.FromContext(ctx).Warnw("company lookup", "tool", t.ID, "error", err)

		return resp
	}
	resp.Company = c

	return resp
}

// List accepts ?status= (default active), ?category= and pagination.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	page := paginate.FromContext(r.Context())
	q := r.URL.Query()

	status := q.Get("status")
	switch status {
	case "":
		status = model.StatusActive
	case "all":
		status = ""
	}

	tools, err := a.store.ListTools(r.Context(), store.ToolFilter{
		Status:   status,
		Category: q.Get("category"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	if err := render.RenderList(w, r, NewToolListResponse(tools)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, a.withCompany(r.Context(), toolFrom(r)))
}

// Score returns the live factor breakdown with the news known now.
func (a *API) Score(w http.ResponseWriter, r *http.Request) {
	s, err := a.scorer.ScoreTool(r.Context(), toolFrom(r).ID)
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &ScoreResponse{ToolScore: s})
}

// resolveCompany links the tool to a known company named in its info.
func (a *API) resolveCompany(ctx context.Context, t *model.Tool) {
	if t.CompanyID != "" || t.Info.Company == "" {
		return
	}
	if c, err := a.store.GetCompany(ctx, t.Info.Company); err == nil {
		t.CompanyID = c.ID
	}
}

// Create persists the posted Tool and returns it back to the client.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	data := &ToolRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	t := data.Tool
	a.resolveCompany(r.Context(), t)
	if err := a.store.CreateTool(r.Context(), t); err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}
	logging.FromContext(r.Context()).Infow("tool created", "tool", t.ID, "slug", t.Slug)

	render.Status(r, http.StatusCreated)
	a.respond(w, r, a.withCompany(r.Context(), t))
}

// Update replaces the editable fields of an existing Tool.
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	current := toolFrom(r)
	edited := *current

	data := &ToolRequest{Tool: &edited}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	t := data.Tool
	t.ID, t.CreatedAt = current.ID, current.CreatedAt
	if t.Slug == "" {
		t.Slug = current.Slug
	}
	a.resolveCompany(r.Context(), t)
	if err := a.store.UpdateTool(r.Context(), t); err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, a.withCompany(r.Context(), t))
}

func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	t := toolFrom(r)
	if err := a.store.DeleteTool(r.Context(), t.ID); err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}
	logging.FromContext(r.Context()).With(zap.String("tool", t.ID)).Info("tool deleted")

	a.respond(w, r, NewToolResponse(t))
}

// SetDelta replaces the curator adjustments applied on top of the computed factors.
func (a *API) SetDelta(w http.ResponseWriter, r *http.Request) {
	t := toolFrom(r)

	data := &DeltaRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if err := a.store.SetToolDelta(r.Context(), t.ID, data.Delta); err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	t.Delta = data.Delta
	a.respond(w, r, NewToolResponse(t))
}

func (a *API) ListCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := a.store.ListCompanies(r.Context())
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	if err := render.RenderList(w, r, NewCompanyListResponse(list)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := a.store.GetCompany(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	a.respond(w, r, &CompanyResponse{Company: c})
}

func (a *API) CreateCompany(w http.ResponseWriter, r *http.Request) {
	data := &CompanyRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if err := a.store.CreateCompany(r.Context(), data.Company); err != nil {
		errresponse.Respond(w, r, errresponse.From(err))

		return
	}

	render.Status(r, http.StatusCreated)
	a.respond(w, r, &CompanyResponse{Company: data.Company})
}
