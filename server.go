package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/article"
	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/config"
	"github.com/SergeyParamoshkin/toolrank/internal/errresponse"
	"github.com/SergeyParamoshkin/toolrank/internal/ingest"
	"github.com/SergeyParamoshkin/toolrank/internal/logging"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
	"github.com/SergeyParamoshkin/toolrank/internal/ranking"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
	"github.com/SergeyParamoshkin/toolrank/internal/telemetry"
	"github.com/SergeyParamoshkin/toolrank/internal/tool"
	"github.com/SergeyParamoshkin/toolrank/internal/user"
	"github.com/SergeyParamoshkin/toolrank/internal/userpayload"
	"github.com/SergeyParamoshkin/toolrank/internal/version"
)

const ServiceName = "toolrank"

// nolint
func init() {
	errresponse.Register(http.StatusNotFound, store.ErrNotFound)
	errresponse.Register(http.StatusConflict,
		store.ErrDuplicate,
		ingest.ErrNoCurrentRanking,
		ingest.ErrAlreadyRolledBack,
		ingest.ErrSuperseded,
		ranking.ErrCurrentDraft,
	)
	errresponse.Register(http.StatusBadRequest,
		preview.ErrInvalidAnalysis,
		ranking.ErrInvalidPeriod,
		algorithm.ErrInvalidWeights,
	)
}

type App struct {
	sugarLogger *zap.SugaredLogger
	config      config.Config

	store    *store.Store
	metrics  *telemetry.Recorder
	admins   *user.Directory
	builder  *ranking.Builder
	ingest   *ingest.Service
	versions *version.Service
}

// NewApp opens the database and wires the services.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*App, error) {
	weights := algorithm.DefaultWeights()
	if cfg.WeightsFile != "" {
		w, err := algorithm.LoadWeights(cfg.WeightsFile)
		if err != nil {
			return nil, err
		}
		weights = w
	}
	engine := algorithm.New(weights)

	rec, err := telemetry.New(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		sugarLogger: logger,
		config:      cfg,
		store:       st,
		metrics:     rec,
		admins:      user.NewDirectory(map[string]string{cfg.AdminName: cfg.AdminToken}),
		builder:     ranking.NewBuilder(st, engine, rec, logger.Named("ranking")),
		ingest:      ingest.NewService(st, rec, logger.Named("ingest")),
		versions:    version.NewService(st, changes.NewAnalyzer(weights), rec, logger.Named("version")),
	}
	if a.admins.Empty() {
		logger.Warnw("admin token is not set, admin routes are disabled")
	}

	return a, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// Router is the public API.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(a.sugarLogger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.Middleware)
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Debugw("ping")
		_, err := w.Write([]byte("pong"))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	rankings := ranking.NewAPI(a.builder, a.config.TrendingTop)
	tools := tool.NewAPI(a.store, a.builder)
	news := article.NewAPI(a.store, a.ingest)

	r.Mount("/rankings", rankings.Routes())
	r.Get("/whats-new", rankings.WhatsNew)
	r.Mount("/tools", tools.Routes())
	r.Mount("/companies", tools.CompanyRoutes())
	r.Mount("/news", news.Routes())

	// Mount the admin sub-router, which btw is the same as:
	// r.Route("/admin", func(r chi.Router) { admin routes here })
	r.Mount("/admin", a.adminRouter(rankings, tools, news))

	return r
}

// A completely separate router for administrator routes
func (a *App) adminRouter(rankings *ranking.API, tools *tool.API, news *article.API) chi.Router {
	r := chi.NewRouter()
	r.Use(a.AdminOnly)
	r.Get("/", a.WhoAmI)
	r.Mount("/rankings", rankings.AdminRoutes())
	r.Mount("/tools", tools.AdminRoutes())
	r.Mount("/companies", tools.AdminCompanyRoutes())
	r.Mount("/news", news.AdminRoutes())
	r.Mount("/versions", version.NewAPI(a.versions).Routes())

	return r
}

// DiagRouter serves the prometheus scrape endpoint.
func (a *App) DiagRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/metrics", a.metrics.Handler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := a.store.Periods(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)

			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// AdminOnly middleware restricts access to just administrators. The
// caller authenticates with "Authorization: Bearer <token>".
func (a *App) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			token = ""
		}

		u, err := a.admins.Authenticate(token)
		if err != nil {
			logging.FromContext(r.Context()).Warnw("admin access denied", "path", r.URL.Path)
			errresponse.Respond(w, r, errresponse.ErrForbidden)

			return
		}

		ctx := user.WithUser(r.Context(), u)
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("admin", u.Name))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WhoAmI returns the authenticated admin.
func (a *App) WhoAmI(w http.ResponseWriter, r *http.Request) {
	u, _ := user.FromContext(r.Context())
	if err := render.Render(w, r, userpayload.NewUserPayloadResponse(u)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrRender(err))
	}
}
