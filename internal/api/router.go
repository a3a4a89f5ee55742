package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/booking-ledger/internal/api/handlers"
	"github.com/baharkarakas/booking-ledger/internal/auth"
	"github.com/baharkarakas/booking-ledger/internal/config"
	"github.com/baharkarakas/booking-ledger/internal/metrics"
	"github.com/baharkarakas/booking-ledger/internal/middleware"
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/baharkarakas/booking-ledger/internal/services"
)

func NewRouter(cfg config.Config, bs *services.BookingService, as *services.BalanceService, tm *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id", "Idempotency-Key"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(tm, cfg.Env)
	bookingH := handlers.NewBookingHandler(bs)
	accountH := handlers.NewAccountHandler(as)
	authMW := middleware.NewAuthMiddleware(tm, cfg.Env)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			// ---------- bookings ----------
			r.With(middleware.RequireRole(models.RoleRequester)).Post("/bookings", bookingH.Create)
			r.Get("/bookings", bookingH.List)
			r.Get("/bookings/{id}", bookingH.Get)
			r.Post("/bookings/{id}/transitions", bookingH.Transition)

			// ---------- accounts ----------
			r.Get("/accounts/me/balance", accountH.MyBalance)
			r.Get("/accounts/me/history", accountH.History)
			r.Get("/accounts/me/verify", accountH.Verify)
			r.Post("/accounts/me/deposits", accountH.Deposit)
			r.Post("/accounts/me/withdrawals", accountH.Withdraw)
			r.Get("/accounts/{id}/balance", accountH.Balance)
		})
	})

	return r
}
