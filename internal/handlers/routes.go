package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// corsOptions builds the CORS policy for the public API. The mini-app is
// served from the messenger's webview origin, so "*" is the default.
func (h *Handlers) corsOptions() cors.Options {
	origins := h.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(h.corsOptions()))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Mini-app
	r.Get("/", h.handleIndex)
	r.Get("/health", h.handleHealth)

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// Player API (public)
	r.Post("/api/user", h.handleAnnounce)
	r.Get("/api/get_user_status", h.handleGetUserStatus)
	r.Post("/api/spin", h.handleSpin)
	r.Get("/api/prizes", h.handlePrizes)

	// Auth routes (public)
	r.Get("/admin/login", h.handleLoginPage)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require(http.HandlerFunc(redirectToLogin)))
		r.Get("/admin", h.handleAdminDashboard)
		r.Get("/admin/users", h.handleAdminUsers)
		r.Get("/admin/settings", h.handleAdminSettings)
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require(http.HandlerFunc(rejectUnauthorized)))

		// Players
		r.Get("/api/admin/users", h.handleGetUsers)
		r.Get("/api/admin/users/{id}/spins", h.handleUserSpins)
		r.Post("/api/admin/reset_attempts", h.handleResetAttempts)
		r.Post("/api/admin/add_attempt", h.handleAddAttempt)
		r.Post("/api/admin/add_prize", h.handleAddPrize)
		r.Post("/api/admin/remove_gift", h.handleRemoveGift)

		// Wheel Control
		r.Post("/api/admin/spins-control", h.handleSetSpinsStatus)
		r.Get("/api/admin/stats", h.handleGetStats)
		r.Get("/api/admin/app-qr", h.handleGetAppQR)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Post("/api/admin/settings", h.handleUpdateSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)
		r.Post("/api/admin/log-level", h.handleSetLogLevel)

		// Database Management
		r.Post("/api/admin/reset-database", h.handleResetDatabase)
	})

	return r
}
