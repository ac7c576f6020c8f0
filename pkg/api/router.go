// Package api provides HTTP API server components.
package api

import (
	"net/http"

	"github.com/edgy/edgy/config"
	"github.com/edgy/edgy/pkg/api/handlers"
	"github.com/edgy/edgy/pkg/api/middleware"
	"github.com/edgy/edgy/pkg/api/response"
	"github.com/edgy/edgy/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Mesh handles mesh, loop and selection endpoints
	Mesh *handlers.MeshHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}
	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}
	r.Use(middleware.CORS(&cfg.Server.CORS))
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.Server.RateLimit)))
	}
	r.Use(middleware.BodyLimit(cfg.Server.HTTP.MaxBodyBytes))
	r.Use(middleware.Timeout(cfg.Server.HTTP.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, response.ErrCodeNotFound,
			"Route not found", middleware.GetRequestID(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, response.ErrCodeMethodNotAllowed,
			"Method not allowed", middleware.GetRequestID(r.Context()))
	})

	RegisterRoutes(r, handlers)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, handlers *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		if handlers.Mesh != nil {
			h := handlers.Mesh
			r.Route("/meshes", func(r chi.Router) {
				r.Post("/", h.CreateMesh)
				r.Get("/", h.ListMeshes)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetMesh)
					r.Delete("/", h.DeleteMesh)

					r.Get("/loops", h.PureLoops)
					r.Get("/edges/{edge}/loops", h.EdgeLoops)
					r.Get("/path", h.ShortestPath)

					r.Get("/selection", h.GetSelection)
					r.Put("/selection", h.SetSelection)

					r.Post("/ops/close-loop", h.CloseLoop)
					r.Post("/ops/resize", h.Resize)
					r.Post("/ops/select-loop", h.SelectLoop)

					r.Get("/selections", h.ListSelections)
					r.Post("/selections/{name}", h.SaveSelection)
					r.Post("/selections/{name}/restore", h.RestoreSelection)
				})
			})
		}
	})

	// Health check routes (not versioned)
	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}
}
