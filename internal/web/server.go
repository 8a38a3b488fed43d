// Package web provides the HTTP API and entries page of the form log.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/formlog/internal/config"
	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/JonMunkholm/formlog/internal/i18n"
	"github.com/JonMunkholm/formlog/internal/metrics"
	mw "github.com/JonMunkholm/formlog/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server of the form log.
type Server struct {
	service *core.Service
	cfg     *config.Config
	catalog *i18n.Catalog
	metrics *metrics.Metrics
	limiter *mw.RateLimiter
	router  *chi.Mux
	server  *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCatalog sets the label catalog used to pick an export language from
// Accept-Language. Defaults to the built-in catalog.
func WithCatalog(c *i18n.Catalog) ServerOption {
	return func(s *Server) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithMetrics exposes m on the configured metrics path.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		catalog: i18n.Default(),
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Rate.Enabled {
		s.limiter = mw.NewRateLimiter(cfg.Rate.SubmissionsPerMinute, time.Minute)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // 0 lets exports stream
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)

	// Security hardening
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Group(func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Exports stream for as long as EXPORT_TIMEOUT allows, so they sit
		// outside the request timeout.
		r.Get("/api/export/{profile}", s.handleExport)

		r.Group(func(r chi.Router) {
			if timeout := s.cfg.Server.RequestTimeout; timeout > 0 {
				r.Use(middleware.Timeout(timeout))
			}

			// Pages
			r.Get("/", s.handleEntriesPage)

			// Submissions
			submit := r.With(middleware.AllowContentType("application/json"))
			if s.limiter != nil {
				submit = submit.With(s.limiter.Handler)
			}
			submit.Post("/api/forms/{identifier}/submissions", s.handleLogSubmission)

			// Entries
			r.Get("/api/entries", s.handleListEntries)
			r.Get("/api/entries/{id}", s.handleGetEntry)

			// Export profiles
			r.Get("/api/profiles", s.handleListProfiles)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The entries page only needs its inline stylesheet
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; form-action 'self'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
