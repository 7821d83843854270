// Package api provides the HTTP API server and handlers for Golden Pens.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/ratelimit"
	"github.com/abdotaker608/golden-pens-api/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
	cfg      *config.Config

	// authLimiter throttles credential endpoints by client IP.
	authLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services:    services,
		router:      router,
		logger:      logger,
		cfg:         cfg,
		authLimiter: ratelimit.New(cfg.Throttle.RequestsPerSecond, cfg.Throttle.Burst),
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(clientIPMiddleware)
	router.Use(throttleMiddleware(s.authLimiter, "/api/v1/auth/", logger))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Golden Pens API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerProfileRoutes()
	s.registerStoryRoutes()
	s.registerChapterRoutes()
	s.registerReplyRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// authorize gates a mutation on an owned resource: the bearer token must be
// the canonical access token of the resource owner.
func (s *Server) authorize(ctx context.Context, header string, kind service.ResourceKind, resourceID string) (*domain.User, error) {
	return s.services.Authorizer.Authorize(ctx, bearerToken(header), kind, resourceID)
}

// === Health ===

// HealthOutput is the health check response.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" doc:"Server health status"`
	}
}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"System"},
	}, func(_ context.Context, _ *struct{}) (*HealthOutput, error) {
		out := &HealthOutput{}
		out.Body.Status = "healthy"
		return out, nil
	})
}
