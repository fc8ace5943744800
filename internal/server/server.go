// Package server provides the HTTP API of the imi embedding server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hyperjump/imi/internal/config"
	"github.com/hyperjump/imi/internal/search"
	"github.com/hyperjump/imi/internal/watcher"
	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

// Server is the HTTP server for the imi API.
type Server struct {
	engine     *search.Engine
	watch      *watcher.Watcher
	config     *config.Config
	configPath string
	configMu   sync.Mutex
	logger     *zap.Logger
	router     chi.Router
	server     *http.Server
	mu         sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWatcher enables the /watch endpoints. When configPath is set, watch
// directory changes are saved back to that config file.
func WithWatcher(w *watcher.Watcher, configPath string) ServerOption {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

// NewServer creates a server serving engine.
func NewServer(engine *search.Engine, cfg *config.Config, logger *zap.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.config.Server.CORSOrigins))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/embed", s.handleEmbed)
	r.Post("/index", s.handleIndex)
	r.Post("/search", s.handleSearch)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Delete("/", s.handleClearDocuments)
		r.Get("/{id}", s.handleGetDocument)
		r.Delete("/{id}", s.handleDeleteDocument)
	})

	r.Route("/watch/directories", func(r chi.Router) {
		r.Get("/", s.handleWatchDirectoriesList)
		r.Post("/", s.handleWatchDirectoriesAdd)
		r.Delete("/", s.handleWatchDirectoriesRemove)
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Start listens on the configured address and blocks until the server stops.
// It returns nil after a graceful Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
