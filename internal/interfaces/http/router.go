// Package http wires the chi router and the HTTP server around the
// application services.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marketgap-io/marketgap/internal/application/opportunity"
	"github.com/marketgap-io/marketgap/internal/application/recommendation"
	"github.com/marketgap-io/marketgap/internal/application/survival"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	"github.com/marketgap-io/marketgap/internal/interfaces/http/handlers"
	"github.com/marketgap-io/marketgap/internal/interfaces/http/middleware"
)

// RouterDeps are the collaborators the router serves.
type RouterDeps struct {
	Snapshots      opportunity.SnapshotProvider
	Opportunities  *opportunity.Service
	Matcher        *recommendation.Matcher
	Survival       *survival.Service
	Rebuilder      handlers.Rebuilder
	MetricsHandler http.Handler
	Observer       middleware.RequestObserver
	Predictions    handlers.PredictionObserver
	AllowedOrigins []string
	Log            logging.Logger
}

// NewRouter assembles the full route tree.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Log, deps.Observer))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	health := handlers.NewHealthHandler(deps.Snapshots)
	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	opp := handlers.NewOpportunityHandler(deps.Opportunities, deps.Log)
	rec := handlers.NewRecommendationHandler(deps.Matcher, deps.Log)
	pred := handlers.NewPredictHandler(deps.Survival, deps.Predictions, deps.Log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/meta/cuisines", handlers.NewMetaHandler().Cuisines)
		r.Get("/opportunities", opp.List)
		r.Get("/opportunities/{zip}", opp.Detail)
		r.Get("/weakspots", opp.Weakspots)
		r.Get("/recommendations", rec.Recommend)
		r.Post("/predict", pred.Predict)

		if deps.Rebuilder != nil {
			admin := handlers.NewAdminHandler(deps.Rebuilder, deps.Log)
			r.Post("/admin/snapshot/reload", admin.ReloadSnapshot)
		}
	})

	return r
}
