// SPDX-License-Identifier: MIT

// Package api exposes the model store and the analysis runner over a
// JSON HTTP interface.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sybila/biodivine/internal/auth"
	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/config"
	"github.com/sybila/biodivine/internal/jobs"
	"github.com/sybila/biodivine/internal/store"
)

// Server bundles the HTTP handlers with their dependencies.
type Server struct {
	models  *store.Store
	runner  *jobs.Runner
	results cache.Cache
	cfg     config.Config
}

// NewServer creates the API server. The caller owns the lifecycle of
// the passed dependencies.
func NewServer(models *store.Store, runner *jobs.Runner, results cache.Cache, cfg config.Config) *Server {
	return &Server{models: models, runner: runner, results: results, cfg: cfg}
}

// Router builds the full middleware stack and route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(instrument)
	r.Use(httprate.LimitByIP(s.cfg.RateLimit.RequestsPerMinute, s.cfg.RateLimit.Window))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.cfg.APIToken))

		r.Get("/models", s.handleListModels)
		r.Post("/models", s.handleCreateModel)
		r.Get("/models/{id}", s.handleGetModel)
		r.Get("/models/{id}/source", s.handleModelSource)
		r.Delete("/models/{id}", s.handleDeleteModel)
		r.Post("/models/{id}/reachability", s.handleSubmitAnalysis)

		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
	})

	return otelhttp.NewHandler(r, "biodivine-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	)
}
