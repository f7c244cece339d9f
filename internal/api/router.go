package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the chi router with every desk route.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.secret))

			r.Get("/state", h.handleState)
			r.Get("/transactions", h.handleTransactions)
			r.Get("/investments", h.handleInvestments)
			r.Get("/liquidity", h.handleLiquidity)
			r.Get("/statement.xlsx", h.handleStatement)
			r.Post("/contributions", h.handleContribute)
			r.Post("/redemptions", h.handleRedeem)
			r.Post("/reinvestments", h.handleReinvest)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/pending", h.handlePending)
				r.Post("/transactions/{id}/approve", h.handleApprove)
				r.Post("/transactions/{id}/reject", h.handleReject)
				r.Post("/performance", h.handleManualPerformance)
				r.Post("/performance/auto", h.handleAutoPerformance)
				r.Get("/users", h.handleUsers)
				r.Post("/users/{id}/verification", h.handleToggleVerification)
				r.Get("/history", h.handleHistory)
			})
		})
	})

	return r
}

// NewServer wraps the router in an http.Server with sane timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      70 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
