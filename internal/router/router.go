// Package router sets up all HTTP routes and middleware chains for the
// repairshop API. Reads are open; writes additionally pass the per-client
// rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"repairshop/internal/handlers"
	"repairshop/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. A nil limiter leaves write routes unlimited.
func New(categories *handlers.Categories, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Get("/navbar", categories.Navbar)
		r.Get("/check", categories.Check)
		r.Get("/{key}", categories.Get)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/", categories.Create)
			r.Post("/bulk-delete", categories.BulkDelete)
			r.Patch("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
