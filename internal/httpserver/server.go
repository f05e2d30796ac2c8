package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"minishop/catalog/internal/config"
	authusecase "minishop/catalog/internal/usecase/auth"
	productusecase "minishop/catalog/internal/usecase/product"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         *http.ServeMux
	handler        http.Handler
	productService *productusecase.Service
	authService    *authusecase.Service
	logger         *slog.Logger
	bindings       map[int][]route
	addr           string
}

// Option customises optional collaborators of the server.
type Option func(*Server)

// WithAuth requires operator tokens on product writes.
func WithAuth(authService *authusecase.Service) Option {
	return func(s *Server) { s.authService = authService }
}

// WithRateLimiter puts limiter in front of every route.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(s *Server) {
		s.handler = limiter.Middleware(s.handler)
	}
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, logger *slog.Logger, productService *productusecase.Service, opts ...Option) *Server {
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	srv := &Server{
		router:         mux,
		handler:        mux,
		productService: productService,
		logger:         logger,
		addr:           addr,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.bindings = srv.versionBindings()
	srv.registerRoutes()

	srv.handler = withRequestID(withLogging(withCORS(srv.handler, cfg.AllowedOrigins), logger))
	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
