// Package httpserver provides the HTTP REST API for the editorial workflow service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/openjournal/editorial-service/internal/database"
	"github.com/openjournal/editorial-service/internal/observability"
	"github.com/openjournal/editorial-service/internal/workflow"
)

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	engine     *workflow.Engine
	reviews    *workflow.ReviewManager
	db         *database.DB
	metrics    *observability.Metrics
	logger     zerolog.Logger
	validate   *validator.Validate
	limiter    *rate.Limiter
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

// NewServer creates a new HTTP server with all dependencies. metrics may be nil.
func NewServer(
	cfg Config,
	engine *workflow.Engine,
	reviews *workflow.ReviewManager,
	db *database.DB,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		engine:   engine,
		reviews:  reviews,
		db:       db,
		metrics:  metrics,
		logger:   logger.With().Str("component", "http-server").Logger(),
		validate: validator.New(),
	}

	if cfg.RateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestContextMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints (no rate limit)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimitMiddleware)
		}

		r.Route("/papers", func(r chi.Router) {
			r.Post("/", s.submitPaper)
			r.Get("/", s.listPapers)
			r.Get("/{paperID}", s.getPaper)
			r.Put("/{paperID}", s.updatePaper)
			r.Delete("/{paperID}", s.deletePaper)
			r.Put("/{paperID}/status", s.updatePaperStatus)
			r.Put("/{paperID}/editor", s.assignEditor)
			r.Post("/{paperID}/reviewers", s.assignReviewer)
			r.Delete("/{paperID}/reviewers/{reviewerID}", s.removeReviewer)
			r.Get("/{paperID}/reviews", s.listPaperReviews)
			r.Post("/{paperID}/revisions", s.submitRevision)
			r.Get("/{paperID}/revisions", s.listRevisions)
			r.Get("/{paperID}/revisions/{version}", s.getRevision)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/{reviewID}", s.getReview)
			r.Post("/{reviewID}/start", s.startReview)
			r.Put("/{reviewID}", s.saveReview)
			r.Post("/{reviewID}/submit", s.submitReview)
			r.Delete("/{reviewID}", s.deleteReview)
		})

		r.Get("/reviewers/{reviewerID}/reviews", s.listReviewerReviews)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.registerUser)
			r.Get("/", s.listUsers)
			r.Get("/{userID}", s.getUser)
		})

		r.Get("/dashboard/stats", s.dashboardStats)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
