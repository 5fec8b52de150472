// Package web provides the JSON HTTP surface of the menu import service.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/innserve/menuimport/internal/catalog"
)

// Pinger is the health-check seam, satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the menu import service.
type Server struct {
	service *catalog.Service
	pinger  Pinger
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server around the import service.
func NewServer(service *catalog.Service, pinger Pinger, requestTimeout time.Duration) *Server {
	s := &Server{
		service: service,
		pinger:  pinger,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware(requestTimeout)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(requestTimeout time.Duration) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		s.router.Use(middleware.Timeout(requestTimeout))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/menu/import", s.handleImport)
		r.Get("/menu/import/template", s.handleTemplate)
		r.Get("/menu", s.handleMenu)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
