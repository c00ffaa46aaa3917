// Package api exposes the Wanderlist services over HTTP with JSON responses.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/mmynk/wanderlist/internal/auth"
	"github.com/mmynk/wanderlist/internal/middleware"
	"github.com/mmynk/wanderlist/internal/service"
)

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds everything the router needs.
type Dependencies struct {
	Services *service.Services
	DB       Pinger
	Tokens   *auth.JWTManager
	Logger   *slog.Logger

	// Limiter throttles API requests. Nil disables limiting.
	Limiter *rate.Limiter

	// RequireAuth rejects unauthenticated writes with 401. Requires Tokens.
	RequireAuth bool

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// Registry receives the HTTP metrics and backs /metrics. Nil creates a fresh one.
	Registry *prometheus.Registry
}

type handler struct {
	svc    *service.Services
	logger *slog.Logger

	// guard wraps routes that modify data.
	guard func(http.Handler) http.Handler
}

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	h := &handler{svc: deps.Services, logger: logger, guard: func(next http.Handler) http.Handler { return next }}
	if deps.RequireAuth && deps.Tokens != nil {
		h.guard = middleware.RequireAuth(deps.Tokens)
	}

	api := http.NewServeMux()
	registerPlaceRoutes(api, h)
	registerReviewRoutes(api, h)
	registerUserRoutes(api, h)

	metrics := middleware.NewMetrics(reg)
	var apiHandler http.Handler = metrics.Handler(api)
	apiHandler = middleware.RateLimit(deps.Limiter)(apiHandler)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	registerUtilityRoutes(mux, deps.DB, reg, logger)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	var root http.Handler = corsHandler.Handler(mux)
	root = middleware.Logging(logger)(root)
	root = middleware.OptionalAuth(deps.Tokens, logger)(root)
	root = middleware.Recover(logger)(root)
	return middleware.RequestID(root)
}

// write registers a data-modifying route behind the auth guard.
func (h *handler) write(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, h.guard(fn))
}

func registerPlaceRoutes(mux *http.ServeMux, h *handler) {
	mux.HandleFunc("GET /api/places", h.listPlaces)
	mux.HandleFunc("GET /api/places/filter", h.filterPlaces)
	mux.HandleFunc("GET /api/places/search", h.searchPlaces)
	mux.HandleFunc("GET /api/places/count", h.countPlaces)
	mux.HandleFunc("GET /api/places/countries/count", h.countCountries)
	mux.HandleFunc("GET /api/places/{id}", h.getPlace)
	mux.HandleFunc("GET /api/places/{id}/reviews", h.listPlaceReviews)
	h.write(mux, "POST /api/places", h.createPlace)
	h.write(mux, "PUT /api/places/{id}", h.updatePlace)
	h.write(mux, "DELETE /api/places/{id}", h.deletePlace)
	h.write(mux, "POST /api/places/{id}/reviews", h.addPlaceReview)
}

func registerReviewRoutes(mux *http.ServeMux, h *handler) {
	mux.HandleFunc("GET /api/reviews/search", h.searchReviews)
	mux.HandleFunc("GET /api/reviews/place", h.reviewsByPlaceName)
	mux.HandleFunc("GET /api/reviews/user/{userId}", h.listUserReviews)
	mux.HandleFunc("GET /api/reviews/{id}", h.getReview)
	h.write(mux, "POST /api/reviews", h.createReview)
	h.write(mux, "PUT /api/reviews/{id}", h.updateReview)
	h.write(mux, "DELETE /api/reviews/{id}", h.deleteReview)
}

func registerUserRoutes(mux *http.ServeMux, h *handler) {
	mux.HandleFunc("POST /api/users/register", h.register)
	mux.HandleFunc("POST /api/users/login", h.login)
	mux.HandleFunc("GET /api/users/stats/{userId}", h.userStats)
	mux.HandleFunc("GET /api/users/{id}", h.getUser)
	h.write(mux, "PUT /api/users/{id}", h.updateUser)
	h.write(mux, "DELETE /api/users/{id}", h.deleteUser)
}

// registerUtilityRoutes registers health check and metrics routes.
func registerUtilityRoutes(mux *http.ServeMux, db Pinger, reg *prometheus.Registry, logger *slog.Logger) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "Health check failed", "error", err)
				writeText(w, http.StatusServiceUnavailable, "database unhealthy")
				return
			}
		}
		writeText(w, http.StatusOK, "ok")
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}
