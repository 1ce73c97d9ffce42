// Package server exposes the portfolio over HTTP: the resume and chat API
// plus the server-rendered page.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/config"
	"github.com/amishk599/folio/internal/model"
)

// Deps are the collaborators the handlers use.
type Deps struct {
	Resumes      model.ResumeSource
	Assistant    *chat.Assistant
	AIConfigured bool
	Logger       *slog.Logger
}

// Server wraps a gin engine in an http.Server with graceful shutdown.
type Server struct {
	engine          *gin.Engine
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// New builds the engine and routes for cfg.
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	h := &handlers{
		resumes:      deps.Resumes,
		assistant:    deps.Assistant,
		aiConfigured: deps.AIConfigured,
		logger:       deps.Logger,
		now:          time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(deps.Logger))
	engine.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", h.index)

	api := engine.Group("/api")
	api.GET("/resume", h.resume)
	api.GET("/health", h.health)
	if rl := cfg.RateLimit; rl.RequestsPerMinute > 0 {
		api.POST("/chat", chatRateLimiter(rl), h.chat)
	} else {
		api.POST("/chat", h.chat)
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          deps.Logger,
	}, nil
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully. It returns
// nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", "timeout", s.shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return cfg
}
