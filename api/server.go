/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/auth/*     Registration and login (public)
  /api/*          Authenticated user surface
  /api/admin/*    Administrator surface (role-gated)

SEE ALSO:
  - handlers.go, admin.go: Handler implementations
  - middleware.go: Authentication gates
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ablelink/invest-engine/invest"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		// Authenticated user surface
		r.Group(func(r chi.Router) {
			r.Use(h.RequireUser)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/", h.UpdateProfile)
				r.Post("/pin", h.SetPIN)
				r.Post("/pin/verify", h.VerifyPIN)
			})

			r.Get("/plans", h.ListPlans)
			r.Get("/investments", h.ListInvestments)
			r.Post("/investments", h.SubmitInvestment)
			r.Get("/withdrawals", h.ListWithdrawals)
			r.Post("/withdrawals", h.SubmitWithdrawal)
			r.Get("/balance", h.GetBalance)
			r.Get("/window", h.GetWindow)
			r.Get("/market/series", h.GetMarketSeries)

			// Administrator surface
			r.Route("/admin", func(r chi.Router) {
				r.Use(h.RequireAdmin)

				r.Get("/users", h.ListUsers)
				r.Get("/investments/pending", h.ListPendingInvestments)
				r.Get("/withdrawals/pending", h.ListPendingWithdrawals)

				r.Route("/users/{userID}", func(r chi.Router) {
					r.Post("/investments/{id}/approve", h.DecideInvestment(invest.InvestmentStatusApproved))
					r.Post("/investments/{id}/reject", h.DecideInvestment(invest.InvestmentStatusRejected))
					r.Post("/withdrawals/{id}/complete", h.DecideWithdrawal(invest.WithdrawalStatusCompleted))
					r.Post("/withdrawals/{id}/reject", h.DecideWithdrawal(invest.WithdrawalStatusRejected))
					r.Post("/disable", h.SetUserDisabled(true))
					r.Post("/enable", h.SetUserDisabled(false))
					r.Get("/export", h.ExportWorkbook)
					r.Post("/report", h.EmailReport)
				})

				r.Post("/notifications/window", h.NotifyWindowOpen)
			})
		})
	})

	return r
}
