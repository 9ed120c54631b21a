package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lyceum-sis/lyceum/internal/assessments"
	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/observability"
	"github.com/lyceum-sis/lyceum/internal/subjects"
	"github.com/lyceum-sis/lyceum/internal/submissions"
	"github.com/lyceum-sis/lyceum/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthMiddleware     *auth.Middleware
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	SubjectsHandler    *subjects.Handler
	AssessmentsHandler *assessments.Handler
	SubmissionsHandler *submissions.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Lyceum defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.AuthMiddleware,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireContext)
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.SubjectsHandler != nil {
			params.SubjectsHandler.MountRoutes(r)
		}
		if params.AssessmentsHandler != nil {
			params.AssessmentsHandler.MountRoutes(r)
		}
		if params.SubmissionsHandler != nil {
			params.SubmissionsHandler.MountRoutes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
