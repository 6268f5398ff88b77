package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otcheredev/pcd-manager/internal/middleware"
)

// Dependencies bundles everything the router needs to wire its handlers,
// so cmd/server/main.go only has to construct one of these.
type Dependencies struct {
	Health       *HealthHandler
	Admin        *AdminHandler
	JWTSecret    []byte
	CORSOrigins  []string
	MetricsEnabled bool
}

// NewRouter assembles the full HTTP surface: unauthenticated health and
// metrics endpoints, and the admin API behind bearer-JWT auth, following
// the teacher's middleware-stack-then-route-groups layout.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", deps.Health.Health)
	r.Get("/ready", deps.Health.Ready)

	if deps.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/schema", SchemaHandler)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(deps.JWTSecret))

		r.With(middleware.RequirePermission("connections:read")).
			Get("/connections", deps.Admin.ListConnections)
		r.With(middleware.RequirePermission("connections:write")).
			Post("/connections/{id}/release", deps.Admin.ForceRelease)
		r.With(middleware.RequirePermission("connections:write")).
			Post("/connections/{id}/abort", deps.Admin.ForceAbort)
		r.With(middleware.RequirePermission("connections:read")).
			Get("/association-events", deps.Admin.AssociationHistory)
		r.With(middleware.RequirePermission("extconfig:write")).
			Post("/extconfig", deps.Admin.RegisterExtConfig)
		r.With(middleware.RequirePermission("connections:write")).
			Post("/connections/{id}/pmstore/{handle}/segments/{seg}/archive", deps.Admin.ArchiveSegment)
	})

	return r
}
