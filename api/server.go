/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in the access log
  2. Access log: zap line per request (logging.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /health               Database ping
  /api/employees/*      Employee directory, requests and balance journal
  /api/managers/*       Manager roles, teams and team status
  /api/relations/*      Manager-employee relations
  /api/requests/*       Vacation request lifecycle
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/leave-engine/logging"
)

// DefaultCORSOrigins is used when NewRouter gets no origins.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	if len(corsOrigins) == 0 {
		corsOrigins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/requests", h.ListEmployeeRequests)
			r.Get("/{id}/movements", h.ListMovements)
		})

		r.Route("/managers", func(r chi.Router) {
			r.Get("/", h.ListManagers)
			r.Post("/", h.CreateManager)
			r.Get("/{id}", h.GetManager)
			r.Delete("/{id}", h.DeleteManager)
			r.Get("/{id}/employees", h.ListTeam)
			r.Get("/{id}/status/{date}", h.TeamStatus)
			r.Get("/{id}/status/{date}/summary", h.TeamStatusSummary)
		})

		r.Route("/relations", func(r chi.Router) {
			r.Post("/", h.CreateRelation)
			r.Get("/{employeeID}", h.GetRelation)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListRequests)
			r.Post("/", h.CreateRequest)
			r.Get("/{id}", h.GetRequest)
			r.Put("/{id}", h.UpdateRequest)
			r.Delete("/{id}", h.DeleteRequest)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
