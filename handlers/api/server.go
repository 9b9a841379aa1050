package api

import (
	"context"
	"net/http"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/services/transcript"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/sirupsen/logrus"
)

type Server struct {
	transcript *TranscriptHandler
	config     *config.Config
	logger     *logrus.Logger
	server     *http.Server
}

type ServerOption func(*Server)

func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config: cfg,
		logger: logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

func WithServices(svc transcript.Service) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator(maxRequestBody)
		s.transcript = NewTranscriptHandler(svc, validator)
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.Server.Port).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /get-transcript", s.transcript.HandleGetTranscript)
	mux.HandleFunc("POST /get-transcript", s.transcript.HandleGetTranscript)
	mux.HandleFunc("GET /resolutions", s.transcript.HandleRecent)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.middleware(mux)
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
	}

	if s.config.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
		middlewares = append(middlewares, rl.Middleware)
	}

	if s.config.Server.Compress {
		middlewares = append(middlewares, middleware.Compress)
	}

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
