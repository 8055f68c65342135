// Package router собирает HTTP-поверхность сервера: маршруты,
// middleware-цепочку и CORS.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/iudanet/stablehand/internal/server/handlers"
	"github.com/iudanet/stablehand/internal/server/middleware"
)

// Config holds everything needed to assemble the router.
type Config struct {
	Logger      *slog.Logger
	JWTConfig   handlers.JWTConfig
	Auth        *handlers.AuthHandler
	Game        *handlers.GameHandler
	Leaderboard *handlers.LeaderboardHandler
	Health      *handlers.HealthHandler

	// Rate limit middleware приходит снаружи: auth-роуты получают строгий
	// лимит, игровые просторный. nil отключает лимит (удобно в тестах).
	AuthRateLimit func(http.Handler) http.Handler
	GameRateLimit func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes).
	// Recovery снаружи, чтобы ловить паники и в остальных middleware.
	r.Use(middleware.RecoveryMiddleware(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingWithSkip(cfg.Logger, []string{"/api/v1/health"}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	authn := middleware.AuthMiddleware(cfg.Logger, cfg.JWTConfig)

	r.Route("/api/v1", func(r chi.Router) {
		// PUBLIC routes (no auth required)
		r.Get("/health", cfg.Health.Health)
		r.Get("/leaderboard", cfg.Leaderboard.Top)

		// Auth routes: без access-токена, но под строгим лимитом.
		// Logout и refresh сами валидируют свои токены в handler-е.
		r.Group(func(r chi.Router) {
			if cfg.AuthRateLimit != nil {
				r.Use(cfg.AuthRateLimit)
			}

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", cfg.Auth.Register)
				r.Post("/login", cfg.Auth.Login)
				r.Post("/refresh", cfg.Auth.Refresh)
				r.Post("/logout", cfg.Auth.Logout)
			})
		})

		// Game routes: JWT обязателен.
		r.Group(func(r chi.Router) {
			if cfg.GameRateLimit != nil {
				r.Use(cfg.GameRateLimit)
			}
			r.Use(authn)

			r.Route("/user", func(r chi.Router) {
				r.Post("/sync", cfg.Game.Sync)
				r.Get("/offline-earnings", cfg.Game.OfflineEarnings)
				r.Post("/claim-offline", cfg.Game.ClaimOffline)
				r.Post("/upgrade", cfg.Game.Upgrade)
			})
		})
	})

	return r
}
