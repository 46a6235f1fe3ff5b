// Package api provides the HTTP API server and handlers for the CampusLens application.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/http/response"
	"github.com/campuslens/campuslens-server/internal/logger"
	"github.com/campuslens/campuslens-server/internal/ratelimit"
	"github.com/campuslens/campuslens-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	gate           *access.Gate
	photoService   *service.PhotoService
	gallery        *service.GalleryService
	tagService     *service.TagService
	analytics      *service.AnalyticsService
	uploadLimiter  *ratelimit.KeyedRateLimiter
	maxUploadBytes int64
	router         *chi.Mux
	logger         *logger.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(gate *access.Gate, photos *service.PhotoService, gallery *service.GalleryService, tags *service.TagService, analytics *service.AnalyticsService, uploadLimiter *ratelimit.KeyedRateLimiter, maxUploadBytes int64, log *logger.Logger) *Server {
	s := &Server{
		gate:           gate,
		photoService:   photos,
		gallery:        gallery,
		tagService:     tags,
		analytics:      analytics,
		uploadLimiter:  uploadLimiter,
		maxUploadBytes: maxUploadBytes,
		router:         chi.NewRouter(),
		logger:         log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1. Every route resolves the bearer assertion when one is
	// present; individual subtrees decide whether a principal is
	// required.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		// Public explore feed (anonymous allowed).
		r.Get("/explore", s.handleExplore)

		// Photo details and files follow photo visibility, so
		// anonymous viewers can open public photos.
		r.Get("/photos/{id}", s.handleGetPhoto)
		r.Get("/photos/{id}/file", s.handleGetPhotoFile)

		// Protected photo endpoints.
		r.Group(func(r chi.Router) {
			r.Use(s.requirePrincipal)

			r.Post("/photos", s.handleUploadPhoto)
			r.Get("/photos", s.handleListOwnPhotos)
			r.Patch("/photos/{id}", s.handleUpdatePhoto)
			r.Delete("/photos/{id}", s.handleDeletePhoto)
			r.Post("/photos/{id}/reprocess", s.handleReprocessPhoto)

			r.Get("/users/me", s.handleGetCurrentUser)
		})

		// Admin endpoints.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requirePrincipal)
			r.Use(s.requireAdmin)

			r.Get("/photos", s.handleAdminListPhotos)
			r.Get("/tags/stats", s.handleTagStats)
			r.Get("/tags/{name}/related", s.handleRelatedTags)
			r.Get("/analytics/summary", s.handleAnalyticsSummary)
		})
	})
}

// handleHealthCheck reports server liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger.Logger)
}
