// Package httptransport assembles the public HTTP surface: the
// verifiable-presentation endpoints plus health and metrics. Business logic
// stays in the feature packages; this layer only mounts and gates them.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"anchorid/internal/platform/middleware"
	"anchorid/internal/verification/handler"
	"anchorid/pkg/platform/httputil"
)

// Dependencies carries everything the router mounts.
type Dependencies struct {
	Verification *handler.Handler
	Auth         middleware.TokenValidator
	Health       func(r *http.Request) error
	Logger       *slog.Logger
}

// NewRouter builds the full route tree. The verification endpoints sit behind
// the auth gate; health and metrics stay open for probes and scrapers.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"status": "ok"}
		if deps.Health != nil {
			if err := deps.Health(req); err != nil {
				deps.Logger.WarnContext(req.Context(), "health check degraded", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Auth, deps.Logger))
		deps.Verification.Register(r)
	})

	return r
}
