package api

import (
	"net/http"
	"time"

	"github.com/dom/groupbuilder/internal/api/handlers"
	"github.com/dom/groupbuilder/internal/api/middleware"
	"github.com/dom/groupbuilder/internal/config"
	"github.com/dom/groupbuilder/internal/service"
	"github.com/dom/groupbuilder/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, log)
	characterHandler := handlers.NewCharacterHandler(services.Character, log)
	entryHandler := handlers.NewEntryHandler(services.Availability, log)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.CORSAllowedOrigins, log)

	requireAuth := middleware.Auth(services.Auth, log)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public auth routes, rate limited against credential guessing
			r.Group(func(r chi.Router) {
				if cfg.AuthRateLimitPerMinute > 0 {
					r.Use(httprate.LimitByIP(cfg.AuthRateLimitPerMinute, time.Minute))
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Delete("/account", authHandler.DeleteAccount)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/dashboard", entryHandler.Dashboard)

			r.Route("/characters", func(r chi.Router) {
				r.Get("/", characterHandler.List)
				r.Post("/", characterHandler.Create)
				r.Delete("/{id}", characterHandler.Delete)
			})

			r.Route("/entries", func(r chi.Router) {
				r.Post("/", entryHandler.Submit)
				r.Delete("/{id}", entryHandler.Delete)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
