// Package server assembles the storefront HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/config"
	"github.com/vyrodovalexey/aura-storefront/internal/handler"
	"github.com/vyrodovalexey/aura-storefront/internal/middleware"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Cart       handler.CartService
	Pages      handler.PageRenderer
	Live       *handler.LiveHandler
	Storefront handler.StorefrontOptions
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
	live       *handler.LiveHandler
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
		live:   deps.Live,
	}

	s.setupMiddleware()
	s.setupRoutes(deps)
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures the middleware chain. The first one applied
// is the outermost.
func (s *Server) setupMiddleware() {
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.SecurityHeaders()))
	s.router.Use(mux.MiddlewareFunc(middleware.CORS(
		[]string{"*"},
		[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		[]string{"Content-Type", middleware.RequestIDHeader},
	)))
}

// setupRoutes registers pages, cart endpoints, the live channel and the
// operational endpoints.
func (s *Server) setupRoutes(deps Deps) {
	s.router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	s.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServerFS(view.Static())),
	).Methods(http.MethodGet, http.MethodHead)

	handler.NewCartAPIHandler(deps.Cart, s.logger).RegisterRoutes(s.router)
	// Preflight requests need a matching route for the CORS middleware to run.
	s.router.PathPrefix("/api/v1/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	handler.NewCartFormHandler(deps.Cart, s.logger).RegisterRoutes(s.router)
	handler.NewStorefrontHandler(deps.Cart, deps.Pages, deps.Storefront, s.logger).RegisterRoutes(s.router)

	if s.live != nil {
		s.live.RegisterRoutes(s.router)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// The catalog page waits on the remote catalog before rendering.
		WriteTimeout:   s.config.CatalogTimeout + 15*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.String("storage_backend", s.config.StorageBackend),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown closes the live connections, then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if s.live != nil {
		s.live.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
