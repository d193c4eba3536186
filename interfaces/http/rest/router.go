// Package rest wires the HTTP surface: routing, CORS, auth and the
// cross-cutting middleware stack.
package rest

import (
	"net/http"

	"calendar-backend/interfaces/http/rest/handlers"
	"calendar-backend/interfaces/http/rest/middleware"
	"calendar-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handlers groups the endpoint handlers the router mounts
type Handlers struct {
	Events   *handlers.EventHandler
	Projects *handlers.ProjectHandler
	Tasks    *handlers.TaskHandler
}

// Options controls router construction
type Options struct {
	Auth       middleware.AuthConfig
	EnableCORS bool
	// Metrics, when set, wraps every request with the request-metrics
	// middleware
	Metrics func(http.Handler) http.Handler
}

// NewRouter assembles the full HTTP handler. Everything except /health sits
// behind authentication.
func NewRouter(h Handlers, opts Options, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics)
	}

	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, "Not found")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Auth, logger))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.Events.List)
			r.Post("/", h.Events.Create)
			r.Put("/", h.Events.Upsert)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Projects.List)
			r.Post("/", h.Projects.Create)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Put("/", h.Projects.Update)
				r.Delete("/", h.Projects.Delete)

				r.Get("/events", h.Events.List)
				r.Post("/events", h.Events.Create)
				r.Delete("/events/{eventID}", h.Events.Delete)

				r.Get("/tasks", h.Tasks.List)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.Tasks.List)
			r.Post("/", h.Tasks.Create)
			r.Put("/{taskID}", h.Tasks.Update)
			r.Delete("/{taskID}", h.Tasks.Delete)
		})
	})

	return r
}
