package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nurox-platform/nurox/internal/database"
	mw "github.com/nurox-platform/nurox/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Debate handlers
	Debate  http.HandlerFunc
	History http.HandlerFunc
	Usage   http.HandlerFunc

	// Admin reporting handlers
	AdminListUsers http.HandlerFunc
	AdminUpgrade   http.HandlerFunc
	AdminDisable   http.HandlerFunc
	AdminStats     http.HandlerFunc
	AdminAudit     http.HandlerFunc

	// Middleware
	AuthMiddleware  func(http.Handler) http.Handler
	AdminMiddleware func(http.Handler) http.Handler

	// Set when the NATS event trail is configured.
	EventTrailHealthy func() bool
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, redisClient *redis.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe checks DB, Redis and the event trail
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"redis":    "healthy",
			"events":   "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if h.EventTrailHealthy != nil {
			if !h.EventTrailHealthy() {
				health["events"] = "unhealthy"
				health["status"] = "degraded"
			}
		} else {
			health["events"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public), optionally rate-limited per IP
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected debate routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Post("/debate", h.Debate)
			r.Get("/history", h.History)
			r.Get("/usage", h.Usage)
		})

		// Admin reporting routes (HTTP basic auth)
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminMiddleware)
			r.Get("/users", h.AdminListUsers)
			r.Post("/upgrade", h.AdminUpgrade)
			r.Post("/disable", h.AdminDisable)
			r.Get("/stats", h.AdminStats)
			r.Get("/audit", h.AdminAudit)
		})
	})

	return r
}
