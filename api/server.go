/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/incomes/*            Income source management
  /api/bills/*              Bill management
  /api/occurrences          Merged occurrence feed
  /api/projection           Pay-period projections
  /api/reminders/upcoming   Planned bill alerts

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public;
  this is a single-user local server.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Income routes
		r.Route("/incomes", func(r chi.Router) {
			r.Get("/", h.ListIncomes)
			r.Post("/", h.CreateIncome)
			r.Get("/{id}", h.GetIncome)
			r.Delete("/{id}", h.DeleteIncome)
			r.Post("/{id}/main", h.SetMainIncome)
		})

		// Bill routes
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.CreateBill)
			r.Get("/{id}", h.GetBill)
			r.Delete("/{id}", h.DeleteBill)
			r.Get("/{id}/next", h.NextDue)
			r.Get("/{id}/occurs", h.BillOccurs)
		})

		// Calendar routes
		r.Get("/occurrences", h.ListOccurrences)
		r.Get("/projection", h.GetProjection)

		// Reminder routes
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/upcoming", h.UpcomingReminders)
		})
	})

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Budget Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Budget Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/incomes">/api/incomes</a> - List income sources</li>
<li><a href="/api/bills">/api/bills</a> - List bills</li>
<li><a href="/api/projection">/api/projection</a> - Pay-period projection</li>
<li><a href="/api/reminders/upcoming">/api/reminders/upcoming</a> - Upcoming bill reminders</li>
</ul>
</body>
</html>`))
	})

	return r
}
